package query

import "time"

// LogEvent describes an evaluation attempt for logging.
type LogEvent struct {
	Engine   string
	Expr     string
	Group    string
	Duration time.Duration
	Err      error
}

// Logger records evaluator events.
type Logger interface {
	LogEvaluation(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogEvaluation implements Logger.
func (f LoggerFunc) LogEvaluation(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(LogEvent) {}
