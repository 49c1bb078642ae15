package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"previsbine/internal/build"
	"previsbine/internal/preflight"
	"previsbine/internal/workflow"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const statusLabelWidth = 32

// paint applies style only when the writer is a terminal.
func paint(style lipgloss.Style, s string, colorize bool) string {
	if !colorize {
		return s
	}
	return style.Render(s)
}

func renderBanner(mode build.Mode, tools build.Toolchain, colorize bool) string {
	lines := []string{
		paint(titleStyle, "previsbine", colorize),
		paint(detailStyle, fmt.Sprintf("mode %s, archiver %s", mode, tools.Archiver), colorize),
		paint(detailStyle, "game "+tools.GameDir, colorize),
	}
	return strings.Join(lines, "\n")
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	var tag string
	var style lipgloss.Style
	switch kind {
	case statusOK:
		tag, style = "OK", okStyle
	case statusWarn:
		tag, style = "WARN", warnStyle
	case statusError:
		tag, style = "ERROR", errorStyle
	default:
		tag, style = "INFO", titleStyle
	}
	status := fmt.Sprintf("[%s]", tag)
	if message != "" {
		status += " " + message
	}
	return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", paint(style, status, colorize))
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case !r.Passed:
		return statusError
	case r.Warning:
		return statusWarn
	default:
		return statusOK
	}
}

// renderStageTable lists every stage and whether it runs in mode.
func renderStageTable(mode build.Mode) string {
	rows := make([][]string, 0, len(build.AllStages()))
	for _, s := range build.AllStages() {
		runs := !s.CleanOnly() || mode == build.Clean
		rows = append(rows, []string{strconv.Itoa(int(s)), s.String(), s.Description(), yesNo(runs)})
	}
	return renderTable("Stages ("+mode.String()+")", []string{"#", "Stage", "Description", "Runs"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft})
}

// renderReport summarizes a finished build.
func renderReport(report workflow.Report, err error, colorize bool) string {
	var b strings.Builder
	for _, w := range report.Warnings {
		b.WriteString(renderStatusLine("Warning", statusWarn, w, colorize))
		b.WriteByte('\n')
	}
	for _, cerr := range report.CleanupErrors {
		b.WriteString(renderStatusLine("Cleanup", statusWarn, cerr.Error(), colorize))
		b.WriteByte('\n')
	}

	if err != nil {
		label := "Build"
		if report.Failed {
			label = fmt.Sprintf("Stage %d %s", int(report.FailedStage), report.FailedStage)
		}
		b.WriteString(renderStatusLine(label, statusError, "failed", colorize))
		if report.RunLog != "" {
			b.WriteString("\n" + renderStatusLine("Run log", statusInfo, report.RunLog, colorize))
		}
		return b.String()
	}

	rows := make([][]string, 0, len(report.Artifacts))
	for _, name := range report.Artifacts {
		rows = append(rows, []string{name})
	}
	summary := []string{
		paint(okStyle, fmt.Sprintf("Build of %s complete in %s", report.Plugin.FileName, report.Duration.Round(time.Second)), colorize),
		renderTable("Produced files (in Data)", []string{"File"}, rows, nil),
		"Package these files with your mod.",
		"Run log: " + report.RunLog,
	}
	block := strings.Join(summary, "\n")
	if colorize {
		block = summaryStyle.Render(block)
	}
	b.WriteString(block)
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
