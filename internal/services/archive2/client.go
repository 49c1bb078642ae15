package archive2

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"previsbine/internal/logging"
	"previsbine/internal/services"
)

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

// WithTranscript records each command in the run log.
func WithTranscript(t *logging.Transcript) Option {
	return func(c *Client) { c.transcript = t }
}

// Client wraps Archive2.exe from the Creation Kit tools.
type Client struct {
	binary     string
	runner     services.Runner
	transcript *logging.Transcript
	logger     *slog.Logger
}

// New constructs an Archive2 client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("archive2 binary required")
	}
	client := &Client{
		binary: binary,
		runner: services.ExecRunner{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies the back-end in logs.
func (c *Client) Name() string { return "Archive2" }

// Pack creates archive in dataDir from the given Data-relative folders.
// Archive2 cannot append, so any existing archive is overwritten.
func (c *Client) Pack(ctx context.Context, dataDir, archive string, folders []string, xbox bool) error {
	args := []string{strings.Join(folders, ","), "-c=" + archive}
	if xbox {
		args = append(args, "-compression=XBox")
	}
	args = append(args, "-f=General", "-q")
	return c.run(ctx, "pack", services.Command{Binary: c.binary, Args: args, Dir: dataDir})
}

// Unpack extracts archive into dataDir.
func (c *Client) Unpack(ctx context.Context, dataDir, archive string) error {
	return c.run(ctx, "extract", services.Command{
		Binary: c.binary,
		Args:   []string{archive, "-e=.", "-q"},
		Dir:    dataDir,
	})
}

func (c *Client) run(ctx context.Context, operation string, cmd services.Command) error {
	stage, _ := services.StageFromContext(ctx)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "archive2")
	logger.Info("running archive2", logging.String("operation", operation), logging.String("command", cmd.String()))
	_ = c.transcript.Printf("Running %s", cmd.String())

	code, err := c.runner.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, services.ErrExternalProcess) || errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrProcessLaunch, stage, "archive2 "+operation, cmd.Binary, err)
	}
	if code != 0 {
		return services.Wrap(services.ErrExternalProcess, stage, "archive2 "+operation, fmt.Sprintf("exit code %d", code), nil)
	}
	return nil
}
