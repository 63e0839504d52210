package query

import (
	"fmt"
	"strings"
	"time"
)

// Option configures a Runner.
type Option func(*runnerConfig)

type runnerConfig struct {
	engine    string
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    Logger
}

// WithEngine selects the evaluator by name: expr (default), cel or js.
func WithEngine(engine string) Option {
	return func(cfg *runnerConfig) {
		cfg.engine = engine
	}
}

// WithEvaluator installs a custom evaluator, overriding WithEngine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *runnerConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled programs between evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *runnerConfig) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry exposes the registry's functions to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *runnerConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the runner.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *runnerConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithLogger records every evaluation attempt.
func WithLogger(logger Logger) Option {
	return func(cfg *runnerConfig) {
		cfg.logger = logger
	}
}

// Runner evaluates expressions with a resolved evaluator and logs each
// attempt.
type Runner struct {
	engine    string
	evaluator Evaluator
	logger    Logger
}

// NewRunner resolves the configured evaluator.
func NewRunner(opts ...Option) (*Runner, error) {
	cfg := runnerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = noopLogger{}
	}
	if cfg.evaluator != nil {
		return &Runner{engine: "custom", evaluator: cfg.evaluator, logger: logger}, nil
	}
	engine := strings.ToLower(strings.TrimSpace(cfg.engine))
	if engine == "" {
		engine = EngineExpr
	}
	evaluator, err := NewEvaluator(engine, cfg.cache, cfg.functions)
	if err != nil {
		return nil, err
	}
	return &Runner{engine: engine, evaluator: evaluator, logger: logger}, nil
}

// NewEvaluator builds the evaluator registered for engine.
func NewEvaluator(engine string, cache ProgramCache, functions *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(functions)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(functions)), nil
	case EngineJS:
		evaluator := NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(functions))
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, EngineJS)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Engine returns the name of the resolved engine.
func (r *Runner) Engine() string {
	return r.engine
}

// Run evaluates expr against ctx.
func (r *Runner) Run(ctx Context, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyExpression
	}
	ctx = ctx.withDefaults()
	start := time.Now()
	value, err := r.evaluator.Evaluate(ctx, expr)
	err = wrapEvaluationError(r.engine, expr, ctx.groupLabel(), err)
	r.logger.LogEvaluation(LogEvent{
		Engine:   r.engine,
		Expr:     expr,
		Group:    ctx.groupLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}
