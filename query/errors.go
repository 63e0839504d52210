package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyExpression is returned for blank expressions.
	ErrEmptyExpression = errors.New("query: expression must not be empty")
	// ErrUnknownEngine is returned by NewEvaluator for unsupported engine names.
	ErrUnknownEngine = errors.New("query: unknown engine")
	// ErrEngineUnavailable is returned when an engine was left out of the build.
	ErrEngineUnavailable = errors.New("query: engine not available in this build")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Group  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("query: %s evaluator %s group=%s: %v", e.Engine, describeExpression(e.Expr), e.Group, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "query:") {
		return err
	}
	return fmt.Errorf("query: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, group string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Group == "" {
			evalErr.Group = group
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Group:  group,
		Err:    err,
	}
}
