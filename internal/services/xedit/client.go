package xedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"previsbine/internal/logging"
	"previsbine/internal/logscan"
	"previsbine/internal/services"
)

// Batch scripts shipped with the previsbine xEdit script pack.
const (
	ScriptMergeCombinedObjects = "Batch_FO4MergeCombinedObjectsAndCheck.pas"
	ScriptMergePrevis          = "Batch_FO4MergePreVisAndAutoUpdateRefr.pas"
)

// ManifestName is the plugin list handed to xEdit.
const ManifestName = "Plugins.txt"

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(r services.Runner) Option {
	return func(c *Client) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTranscript sets the run log receiving the script log.
func WithTranscript(t *logging.Transcript) Option {
	return func(c *Client) { c.transcript = t }
}

// WithCompletion replaces the rules deciding whether a script finished.
func WithCompletion(c logscan.Classifier) Option {
	return func(cl *Client) {
		if c != nil {
			cl.completion = c
		}
	}
}

// Timing controls the waits around a script run.
type Timing struct {
	PollInterval time.Duration
	WaitTimeout  time.Duration
	Settle       time.Duration
	ExitDelay    time.Duration
}

// WithTiming overrides the default waits.
func WithTiming(t Timing) Option {
	return func(c *Client) { c.timing = t }
}

// Client drives xEdit in unattended script mode.
type Client struct {
	binary     string
	scriptLog  string
	manifest   string
	runner     services.Runner
	transcript *logging.Transcript
	timing     Timing
	completion logscan.Classifier
	logger     *slog.Logger
}

// New constructs an xEdit client. The plugin manifest is written next to
// scriptLog.
func New(binary, scriptLog string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("xedit binary required")
	}
	if strings.TrimSpace(scriptLog) == "" {
		return nil, errors.New("script log path required")
	}
	client := &Client{
		binary:    binary,
		scriptLog: scriptLog,
		manifest:  filepath.Join(filepath.Dir(scriptLog), ManifestName),
		runner:    services.ExecRunner{},
		timing: Timing{
			PollInterval: 5 * time.Second,
			WaitTimeout:  time.Hour,
			Settle:       10 * time.Second,
			ExitDelay:    5 * time.Second,
		},
		completion: logscan.ScriptCompleted,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// RunScript applies script to plugin with companion loaded alongside it and
// returns the decoded script log. xEdit never exits on its own in this mode,
// so the client waits for the log, then stops the process.
func (c *Client) RunScript(ctx context.Context, script, plugin, companion string) (string, error) {
	stage, _ := services.StageFromContext(ctx)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "xedit")

	if err := c.writeManifest(plugin, companion); err != nil {
		return "", services.Wrap(services.ErrExternalProcess, stage, "write plugin manifest", c.manifest, err)
	}
	if err := os.Remove(c.scriptLog); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalProcess, stage, "remove stale script log", c.scriptLog, err)
	}

	cmd := services.Command{
		Binary: c.binary,
		Args: []string{
			"-fo4",
			"-autoexit",
			"-P:" + c.manifest,
			"-Script:" + script,
			"-Mod:" + plugin,
			"-log:" + c.scriptLog,
		},
		Dir: filepath.Dir(c.binary),
	}
	logger.Info("running xedit script",
		logging.String("script", script),
		logging.String("command", cmd.String()),
	)
	_ = c.transcript.Printf("Running %s", cmd.String())

	proc, err := c.runner.Start(ctx, cmd)
	if err != nil {
		if errors.Is(err, services.ErrProcessLaunch) {
			return "", err
		}
		return "", services.Wrap(services.ErrProcessLaunch, stage, script, cmd.Binary, err)
	}
	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		if err := proc.Terminate(); err != nil {
			logger.Warn("failed to stop xedit", logging.Error(err))
		}
	}
	defer stop()

	waitErr := services.WaitForFile(ctx, func() bool {
		_, err := os.Stat(c.scriptLog)
		return err == nil
	}, c.timing.PollInterval, c.timing.WaitTimeout)
	if waitErr != nil {
		if errors.Is(waitErr, services.ErrTimeout) {
			return "", services.Wrap(services.ErrTimeout, stage, script, "xEdit script log never appeared", waitErr)
		}
		return "", waitErr
	}

	if err := services.Sleep(ctx, c.timing.Settle); err != nil {
		return "", err
	}
	stop()
	if err := services.Sleep(ctx, c.timing.ExitDelay); err != nil {
		return "", err
	}

	text, ok, err := c.transcript.AppendFile("xEdit", c.scriptLog)
	if err != nil {
		return "", services.Wrap(services.ErrLogMissing, stage, script, "read script log", err)
	}
	if !ok {
		return "", services.Wrap(services.ErrLogMissing, stage, script, fmt.Sprintf("%s disappeared", c.scriptLog), nil)
	}

	if outcome := c.completion.Classify(text); outcome.Failed() {
		return text, services.Wrap(services.ErrLogParse, stage, script, outcome.Reason, nil)
	}
	return text, nil
}

func (c *Client) writeManifest(plugins ...string) error {
	var b strings.Builder
	for i, name := range plugins {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('*')
		b.WriteString(name)
	}
	if err := os.MkdirAll(filepath.Dir(c.manifest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.manifest, []byte(b.String()), 0o644)
}
