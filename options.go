package recolor

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-recolor/pkg/activity"
)

// Option configures an Editor.
type Option func(*editorConfig)

type editorConfig struct {
	config          Config
	checkpointer    Checkpointer
	now             func() time.Time
	logger          *slog.Logger
	evaluator       Evaluator
	evaluatorLogger EvaluatorLogger
	programCache    ProgramCache
	functions       *FunctionRegistry
	activityHooks   activity.Hooks
	actorID         string
	tenantID        string
	meshID          string
}

func applyOptions(opts []Option) editorConfig {
	cfg := editorConfig{config: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.checkpointer == nil {
		cfg.checkpointer = noopCheckpointer{}
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.logger == nil {
		cfg.logger = newNopLogger()
	}
	if cfg.evaluatorLogger == nil {
		cfg.evaluatorLogger = SlogEvaluatorLogger(cfg.logger)
	}
	if cfg.functions == nil {
		cfg.functions = NewColorFunctionRegistry()
	}
	if cfg.config.AttributeName == "" {
		cfg.config.AttributeName = DefaultAttributeName
	}
	return cfg
}

// WithConfig replaces the editor settings. Zero fields keep their defaults.
func WithConfig(config Config) Option {
	return func(cfg *editorConfig) {
		cfg.config = mergeConfig(config)
	}
}

// WithCheckpointer routes checkpoint requests to the host undo service.
func WithCheckpointer(checkpointer Checkpointer) Option {
	return func(cfg *editorConfig) {
		cfg.checkpointer = checkpointer
	}
}

// WithClock overrides the clock used for coalescing and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(cfg *editorConfig) {
		cfg.now = now
	}
}

// WithLogger attaches a structured logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *editorConfig) {
		cfg.logger = logger
	}
}

// WithEvaluator sets the evaluator used by DerivePalette, bypassing the
// engine named in Config.Evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *editorConfig) {
		cfg.evaluator = e
	}
}

// WithEvaluatorLogger attaches an evaluator logger. By default evaluations
// are written to the editor's slog logger.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *editorConfig) {
		if logger == nil {
			cfg.evaluatorLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evaluatorLogger = logger
	}
}

// WithProgramCache shares compiled derive expressions across editors.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *editorConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry replaces the color helpers available to derive
// expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *editorConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn next to the built-in color helpers.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *editorConfig) {
		if cfg.functions == nil {
			cfg.functions = NewColorFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithActivityHooks attaches activity hooks. Nil entries are dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CompactHooks(hooks)
	return func(cfg *editorConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActor stamps actor and tenant ids on emitted activity.
func WithActor(actorID, tenantID string) Option {
	return func(cfg *editorConfig) {
		cfg.actorID = actorID
		cfg.tenantID = tenantID
	}
}

// WithMeshID names the edited mesh in activity and log records.
func WithMeshID(id string) Option {
	return func(cfg *editorConfig) {
		cfg.meshID = id
	}
}
