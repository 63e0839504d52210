// Package query evaluates expressions against generic snapshots of state
// groups. Snapshot keys are exposed as top-level variables, so a group holding
// a "Preferences" state can be queried with Preferences.framerateLimit > 120.
package query

import "time"

// Engine names accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Context carries inputs needed when evaluating an expression.
type Context struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Group    string
}

func (ctx Context) withDefaults() Context {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx Context) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

func (ctx Context) groupLabel() string {
	if ctx.Group != "" {
		return ctx.Group
	}
	return "unknown"
}

func snapshotAsMap(value any) map[string]any {
	if m, ok := value.(map[string]any); ok && m != nil {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a query context.
type Evaluator interface {
	Evaluate(ctx Context, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx Context) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}
