package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"previsbine/internal/build"
	"previsbine/internal/services"
)

// linePrompter asks questions on a line-oriented terminal.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) PluginName(ctx context.Context) (string, error) {
	for {
		answer, err := p.ask(ctx, "Plugin to build (e.g. MyMod.esp): ")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

func (p *linePrompter) ResumeStage(ctx context.Context, mode build.Mode) (build.Stage, error) {
	fmt.Fprintln(p.out, "The plugin already exists. Stages:")
	fmt.Fprintln(p.out, renderStageTable(mode))
	for {
		answer, err := p.ask(ctx, fmt.Sprintf("Start from stage [%d-%d]: ", build.VerifyEnvironment, build.ArchiveVis))
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil {
			fmt.Fprintf(p.out, "%q is not a stage number\n", answer)
			continue
		}
		stage, parseErr := build.ParseStage(n)
		if parseErr != nil {
			fmt.Fprintln(p.out, parseErr)
			continue
		}
		if stage.CleanOnly() && mode != build.Clean {
			fmt.Fprintf(p.out, "%s only runs in clean mode\n", stage)
			continue
		}
		return stage, nil
	}
}

func (p *linePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		answer, err := p.ask(ctx, question+" [y/n]: ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (p *linePrompter) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", services.Wrap(services.ErrUserAborted, "", "prompt", "no answer on standard input", nil)
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
