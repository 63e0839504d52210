package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Schemer lets a type describe its own JSON shape when it does not follow its
// Go kind, for example a byte slice that encodes as a number array.
type Schemer interface {
	JSONSchema() map[string]any
}

var schemerType = reflect.TypeFor[Schemer]()

// schemaOf returns the schema of value's type. Struct fields document the
// value they hold in value as their default.
func schemaOf(value any) (map[string]any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return objectSchema(map[string]any{}), nil
	}
	w := schemaWalker{active: map[reflect.Type]bool{}}
	return w.walk(rv.Type(), rv)
}

func objectSchema(properties map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": properties}
}

// schemaWalker descends a type. v is invalid below containers, where no
// instance supplies defaults.
type schemaWalker struct {
	active map[reflect.Type]bool
}

func (w schemaWalker) walk(t reflect.Type, v reflect.Value) (map[string]any, error) {
	for t.Kind() == reflect.Pointer {
		if v.IsValid() {
			if v.IsNil() {
				v = reflect.Value{}
			} else {
				v = v.Elem()
			}
		}
		t = t.Elem()
	}

	if t.Kind() != reflect.Interface && t.Implements(schemerType) {
		return maps.Clone(reflect.Zero(t).Interface().(Schemer).JSONSchema()), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}, nil
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}, nil
	case reflect.String:
		return map[string]any{"type": "string"}, nil
	case reflect.Interface:
		if v.IsValid() && !v.IsNil() {
			return w.walk(v.Elem().Type(), v.Elem())
		}
		return map[string]any{}, nil
	case reflect.Struct:
		return w.walkStruct(t, v)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("openapi: map key type %s unsupported", t.Key())
		}
		values, err := w.walk(t.Elem(), reflect.Value{})
		if err != nil {
			return nil, err
		}
		return map[string]any{"type": "object", "additionalProperties": values}, nil
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}, nil
		}
		items, err := w.walk(t.Elem(), reflect.Value{})
		if err != nil {
			return nil, err
		}
		schema := map[string]any{"type": "array", "items": items}
		if t.Kind() == reflect.Array {
			schema["minItems"] = t.Len()
			schema["maxItems"] = t.Len()
		}
		return schema, nil
	default:
		return nil, fmt.Errorf("openapi: %s has no JSON form", t)
	}
}

func (w schemaWalker) walkStruct(t reflect.Type, v reflect.Value) (map[string]any, error) {
	if w.active[t] {
		return map[string]any{"type": "object"}, nil
	}
	w.active[t] = true
	defer delete(w.active, t)

	properties := map[string]any{}
	var required []string
	for i := range t.NumField() {
		field := t.Field(i)
		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}
		var fv reflect.Value
		if v.IsValid() {
			fv = v.Field(i)
		}

		child, err := w.walk(field.Type, fv)
		if err != nil {
			return nil, fmt.Errorf("openapi: field %s: %w", field.Name, err)
		}
		if def, ok := defaultOf(field.Type, fv); ok {
			child["default"] = def
		}
		if err := applyTags(child, field); err != nil {
			return nil, err
		}
		properties[name] = child

		if flag, _ := strconv.ParseBool(field.Tag.Get("required")); flag && !omitEmpty {
			required = append(required, name)
		}
	}

	schema := objectSchema(properties)
	if len(required) > 0 {
		sort.Strings(required)
		schema["required"] = required
	}
	return schema, nil
}

// defaultOf reports the JSON value of a scalar field, or of any field whose
// type describes its own schema.
func defaultOf(t reflect.Type, v reflect.Value) (any, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	if t.Implements(schemerType) {
		raw, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, false
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil || out == nil {
			return nil, false
		}
		return out, true
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		return v.String(), true
	}
	return nil, false
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	if !field.IsExported() {
		return "", false, true
	}
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name, false, false
	}
	if tag == "-" {
		return "", false, true
	}
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	for _, option := range strings.Split(options, ",") {
		if option == "omitempty" || option == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyTags copies the doc, enum, minimum and maximum tags into schema.
func applyTags(schema map[string]any, field reflect.StructField) error {
	base := field.Type
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if doc := field.Tag.Get("doc"); doc != "" {
		schema["description"] = doc
	}
	if raw := field.Tag.Get("enum"); raw != "" {
		var values []any
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			value, err := parseScalar(base, part)
			if err != nil {
				return fmt.Errorf("openapi: enum of field %s: %w", field.Name, err)
			}
			values = append(values, value)
		}
		schema["enum"] = values
	}
	for _, key := range []string{"minimum", "maximum"} {
		raw := field.Tag.Get(key)
		if raw == "" {
			continue
		}
		bound, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("openapi: %s of field %s: %w", key, field.Name, err)
		}
		schema[key] = bound
	}
	return nil
}

func parseScalar(t reflect.Type, raw string) (any, error) {
	switch t.Kind() {
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	}
	return raw, nil
}

// digest fingerprints a schema. encoding/json sorts map keys, so equal
// schemas give equal digests.
func digest(schema any) string {
	data, err := json.Marshal(schema)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
