package bsarch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"previsbine/internal/logging"
	"previsbine/internal/services"
)

// Archive formats understood by BSArch for Fallout 4.
const (
	FormatGeneral = "General"
	FormatXbox    = "Xbox"
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

// Client wraps the BSArch command line archiver.
type Client struct {
	binary     string
	runner     services.Runner
	transcript *logging.Transcript
	logger     *slog.Logger
}

// New constructs a BSArch client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("bsarch binary required")
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
func (c *Client) Name() string { return "BSArch" }

// Pack builds archive from the listed Data-relative folders.
func (c *Client) Pack(ctx context.Context, dataDir, archive string, folders []string, xbox bool) error {
	format := FormatGeneral
	if xbox {
		format = FormatXbox
	}
	args := []string{"pack", dataDir, filepath.Join(dataDir, archive), format}
	for _, folder := range folders {
		args = append(args, "--include", folder)
	}
	return c.run(ctx, "pack", services.Command{Binary: c.binary, Args: args, Dir: dataDir})
}

// Unpack extracts archive into dataDir.
func (c *Client) Unpack(ctx context.Context, dataDir, archive string) error {
	return c.run(ctx, "unpack", services.Command{
		Binary: c.binary,
		Args:   []string{"unpack", filepath.Join(dataDir, archive), dataDir},
		Dir:    dataDir,
	})
}

func (c *Client) run(ctx context.Context, operation string, cmd services.Command) error {
	stage, _ := services.StageFromContext(ctx)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "bsarch")
	logger.Info("running bsarch", logging.String("operation", operation), logging.String("command", cmd.String()))
	_ = c.transcript.Printf("Running %s", cmd.String())

	code, err := c.runner.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, services.ErrExternalProcess) || errors.Is(err, context.Canceled) {
			return err
		}
		return services.Wrap(services.ErrProcessLaunch, stage, "bsarch "+operation, cmd.Binary, err)
	}
	if code != 0 {
		return services.Wrap(services.ErrExternalProcess, stage, "bsarch "+operation, fmt.Sprintf("exit code %d", code), nil)
	}
	return nil
}
