// Package openapi derives JSON Schema documents from state values. Schemas are
// built from default instances, so every scalar property carries its default.
package openapi

import (
	"fmt"
	"strings"
)

// DefaultVersion is the OpenAPI version written by Document.
const DefaultVersion = "3.1.0"

// Entry is one named value of a group document.
type Entry struct {
	Name  string
	Value any
}

// Info describes the document being generated.
type Info struct {
	Title       string
	Version     string
	Description string
}

// Option configures a Generator.
type Option func(*Generator)

// WithOpenAPIVersion overrides the version written by Document.
func WithOpenAPIVersion(version string) Option {
	return func(g *Generator) {
		if version = strings.TrimSpace(version); version != "" {
			g.version = version
		}
	}
}

// WithInfo sets the document info block.
func WithInfo(info Info) Option {
	return func(g *Generator) {
		g.info = info
	}
}

// Generator builds schemas for individual values and whole group documents.
type Generator struct {
	version string
	info    Info
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		version: DefaultVersion,
		info:    Info{Title: "State", Version: "1.0.0"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate returns the inline schema for value.
func (g *Generator) Generate(value any) (map[string]any, error) {
	return schemaOf(value)
}

// GroupSchema returns an object schema with one property per entry. The
// x-order extension keeps the entry order, which JSON objects do not.
func (g *Generator) GroupSchema(title string, entries []Entry) (map[string]any, error) {
	properties := make(map[string]any, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("openapi: entry name must not be empty")
		}
		if _, exists := properties[entry.Name]; exists {
			return nil, fmt.Errorf("openapi: duplicate entry %q", entry.Name)
		}
		schema, err := g.Generate(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: entry %q: %w", entry.Name, err)
		}
		properties[entry.Name] = schema
		order = append(order, entry.Name)
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
		"x-order":    order,
	}
	if title != "" {
		schema["title"] = title
	}
	return schema, nil
}

// Document wraps the group schemas of several groups in an OpenAPI document.
// Each entry becomes a component schema and each group an object schema
// referencing them.
func (g *Generator) Document(groups map[string][]Entry) (map[string]any, error) {
	components := map[string]any{}
	for group, entries := range groups {
		properties := make(map[string]any, len(entries))
		order := make([]string, 0, len(entries))
		for _, entry := range entries {
			schema, err := g.Generate(entry.Value)
			if err != nil {
				return nil, fmt.Errorf("openapi: %s entry %q: %w", group, entry.Name, err)
			}
			name := componentName(entry.Name)
			if existing, ok := components[name]; ok {
				if digest(existing) != digest(schema) {
					return nil, fmt.Errorf("openapi: component %q defined twice with different shapes", name)
				}
			}
			components[name] = schema
			properties[entry.Name] = map[string]any{"$ref": "#/components/schemas/" + name}
			order = append(order, entry.Name)
		}
		components[componentName(group)+"Group"] = map[string]any{
			"type":       "object",
			"properties": properties,
			"x-order":    order,
		}
	}

	info := map[string]any{
		"title":   g.info.Title,
		"version": g.info.Version,
	}
	if g.info.Description != "" {
		info["description"] = g.info.Description
	}
	return map[string]any{
		"openapi":    g.version,
		"info":       info,
		"paths":      map[string]any{},
		"components": map[string]any{"schemas": components},
	}, nil
}

func componentName(name string) string {
	var builder strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upper && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			builder.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	if builder.Len() == 0 {
		return "Unnamed"
	}
	return builder.String()
}
