package recolor

import (
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes one palette derivation for logging.
type EvaluatorLogEvent struct {
	Engine     string
	Expression string
	Palette    string
	Slots      int
	Duration   time.Duration
	Err        error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// SlogEvaluatorLogger writes evaluation events to logger at debug level, or
// warn level when the evaluation failed.
func SlogEvaluatorLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		attrs := []any{
			slog.String("engine", event.Engine),
			slog.String("expression", event.Expression),
			slog.String("palette", event.Palette),
			slog.Int("slots", event.Slots),
			slog.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			logger.Warn("recolor: derive palette failed", append(attrs, slog.Any("err", event.Err))...)
			return
		}
		logger.Debug("recolor: derived palette", attrs...)
	})
}
