package creationkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"previsbine/internal/gamedir"
	"previsbine/internal/logging"
	"previsbine/internal/services"
)

// Actions understood by the Creation Kit command line.
const (
	ActionGeneratePrecombined = "GeneratePrecombined"
	ActionCompressPSG         = "CompressPSG"
	ActionBuildCDX            = "BuildCDX"
	ActionGeneratePreVisData  = "GeneratePreVisData"
)

// Invocation describes one headless Creation Kit run.
type Invocation struct {
	Action string
	Plugin string
	// Output is the file, relative to Data, the run must produce.
	Output string
	Args   []string
}

// Result reports what the run left behind.
type Result struct {
	ExitCode int
	// Log is the decoded Creation Kit log, empty when none was written.
	Log string
	// Warning is set when the tool exited non-zero but still produced its output.
	Warning string
}

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

// WithTranscript sets the run log receiving the Creation Kit log.
func WithTranscript(t *logging.Transcript) Option {
	return func(c *Client) { c.transcript = t }
}

// WithSettleDelay sets the pause after the tool exits.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) { c.settle = d }
}

// Client drives CreationKit.exe in batch mode.
type Client struct {
	binary     string
	layout     *gamedir.Layout
	logFile    string
	runner     services.Runner
	transcript *logging.Transcript
	settle     time.Duration
	logger     *slog.Logger
}

// New constructs a Creation Kit client. logFile is the host path the
// extender redirects the Creation Kit log to.
func New(binary string, layout *gamedir.Layout, logFile string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("creation kit binary required")
	}
	if layout == nil {
		return nil, errors.New("game layout required")
	}
	client := &Client{
		binary:  binary,
		layout:  layout,
		logFile: logFile,
		runner:  services.ExecRunner{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Run executes the invocation with graphics components disabled.
func (c *Client) Run(ctx context.Context, inv Invocation) (result Result, err error) {
	stage, _ := services.StageFromContext(ctx)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "creation-kit")

	release, err := c.layout.DisableComponents(gamedir.GraphicsComponents)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalProcess, stage, "disable graphics components", "", err)
	}
	defer func() {
		if releaseErr := release(); releaseErr != nil {
			err = errors.Join(err, services.Wrap(services.ErrExternalProcess, stage, "restore graphics components", "", releaseErr))
		}
	}()

	if c.logFile != "" {
		if rmErr := os.Remove(c.logFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return Result{}, services.Wrap(services.ErrExternalProcess, stage, "remove stale log", c.logFile, rmErr)
		}
	}

	cmd := services.Command{
		Binary: c.binary,
		Args:   append([]string{fmt.Sprintf("-%s:%s", inv.Action, inv.Plugin)}, inv.Args...),
		Dir:    c.layout.Abs("."),
	}
	logger.Info("running creation kit",
		logging.String("action", inv.Action),
		logging.String("output", inv.Output),
		logging.String("command", cmd.String()),
	)
	_ = c.transcript.Printf("Running %s", cmd.String())

	exitCode, runErr := c.runner.Run(ctx, cmd)
	if runErr != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if errors.Is(runErr, services.ErrProcessLaunch) {
			return Result{}, runErr
		}
		return Result{}, services.Wrap(services.ErrProcessLaunch, stage, inv.Action, cmd.Binary, runErr)
	}
	result.ExitCode = exitCode

	if err := services.Sleep(ctx, c.settle); err != nil {
		return result, err
	}

	if c.logFile != "" {
		text, _, logErr := c.transcript.AppendFile("Creation Kit", c.logFile)
		if logErr != nil {
			logger.Warn("failed to append creation kit log", logging.Error(logErr))
		}
		result.Log = text
	}

	if !c.layout.DataExists(inv.Output) {
		return result, services.Wrap(services.ErrOutputMissing, stage, inv.Action,
			fmt.Sprintf("%s was not created (exit code %d)", inv.Output, exitCode), nil)
	}

	if exitCode != 0 {
		result.Warning = fmt.Sprintf("Creation Kit exited with code %d but %s was created", exitCode, inv.Output)
		logging.WarnWithContext(logger, "creation kit exited non-zero", "tool_exit_code",
			logging.Int("exit_code", exitCode),
			logging.String("output", inv.Output),
			logging.String(logging.FieldImpact, "output produced; verify it in the Creation Kit"),
		)
		_ = c.transcript.Printf("WARNING: %s", result.Warning)
	}
	return result, nil
}
