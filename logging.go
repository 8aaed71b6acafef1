package defaults

import "time"

// OperationLogEvent describes one persister operation for logging.
type OperationLogEvent struct {
	Op         Operation
	StateKey   string
	Attributes []string
	Duration   time.Duration
	Err        error
	// HookErr carries activity-hook failures, which never fail the operation
	// itself.
	HookErr error
}

// OperationLogger records persister operations.
type OperationLogger interface {
	LogOperation(OperationLogEvent)
}

// OperationLoggerFunc adapts a function to OperationLogger.
type OperationLoggerFunc func(OperationLogEvent)

// LogOperation implements OperationLogger.
func (f OperationLoggerFunc) LogOperation(event OperationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopOperationLogger struct{}

func (noopOperationLogger) LogOperation(OperationLogEvent) {}

// WithOperationLogger attaches an operation logger to the persister.
func WithOperationLogger(logger OperationLogger) Option {
	return func(cfg *persisterConfig) {
		if logger == nil {
			cfg.logger = noopOperationLogger{}
			return
		}
		cfg.logger = logger
	}
}
