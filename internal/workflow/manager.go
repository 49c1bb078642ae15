package workflow

import (
	"log/slog"
	"time"

	"previsbine/internal/config"
	"previsbine/internal/logging"
	"previsbine/internal/logscan"
	"previsbine/internal/services"
)

// Manager runs the previsbine stages for one plugin at a time.
type Manager struct {
	cfg      *config.Config
	logger   *slog.Logger
	runner   services.Runner
	prompter Prompter
	timing   Timing
	rules    LogRules
}

// LogRules selects the classifier applied to each tool log.
type LogRules struct {
	Precombines   logscan.Classifier
	Previs        logscan.Classifier
	ScriptDone    logscan.Classifier
	MergeCombined logscan.Classifier
	MergePrevis   logscan.Classifier
}

// DefaultLogRules returns the built-in marker rule sets.
func DefaultLogRules() LogRules {
	return LogRules{
		Precombines:   logscan.HandleExhaustion,
		Previs:        logscan.VisibilityIncomplete,
		ScriptDone:    logscan.ScriptCompleted,
		MergeCombined: logscan.ScriptNoErrorsAdvisory,
		MergePrevis:   logscan.ScriptNoErrorsRequired,
	}
}

// Timing holds the waits around the external tools.
type Timing struct {
	Settle        time.Duration
	ExtractSettle time.Duration
	ScriptSettle  time.Duration
	ScriptExit    time.Duration
	PollInterval  time.Duration
	WaitTimeout   time.Duration
}

// TimingFromConfig converts the configured seconds into durations.
func TimingFromConfig(t config.Timing) Timing {
	return Timing{
		Settle:        t.SettleDuration(),
		ExtractSettle: t.ExtractSettleDuration(),
		ScriptSettle:  t.ScriptSettleDuration(),
		ScriptExit:    t.ScriptExitDuration(),
		PollInterval:  t.PollInterval(),
		WaitTimeout:   t.WaitTimeout(),
	}
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithRunner replaces the process runner shared by every tool client.
func WithRunner(r services.Runner) ManagerOption {
	return func(m *Manager) {
		if r != nil {
			m.runner = r
		}
	}
}

// WithPrompter enables interactive questions.
func WithPrompter(p Prompter) ManagerOption {
	return func(m *Manager) { m.prompter = p }
}

// WithLogRules replaces the log classifiers. Nil fields keep the defaults.
func WithLogRules(r LogRules) ManagerOption {
	return func(m *Manager) {
		if r.Precombines != nil {
			m.rules.Precombines = r.Precombines
		}
		if r.Previs != nil {
			m.rules.Previs = r.Previs
		}
		if r.ScriptDone != nil {
			m.rules.ScriptDone = r.ScriptDone
		}
		if r.MergeCombined != nil {
			m.rules.MergeCombined = r.MergeCombined
		}
		if r.MergePrevis != nil {
			m.rules.MergePrevis = r.MergePrevis
		}
	}
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		logger: logger,
		runner: services.ExecRunner{},
		rules:  DefaultLogRules(),
	}
	if cfg != nil {
		m.timing = TimingFromConfig(cfg.Timing)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
