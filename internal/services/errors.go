package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrPrerequisiteUnmet    = errors.New("prerequisite unmet")
	ErrExternalProcess      = errors.New("external process failed")
	ErrProcessLaunch        = fmt.Errorf("%w: launch failed", ErrExternalProcess)
	ErrOutputMissing        = errors.New("output artifact missing")
	ErrLogMissing           = errors.New("tool log missing")
	ErrLogParse             = errors.New("tool log indicates failure")
	ErrUserAborted          = errors.New("aborted by user")
	ErrTimeout              = errors.New("timeout")
)

// Kind is a stable identifier for an error marker, used in structured logs.
type Kind string

const (
	KindUnknown              Kind = "unknown"
	KindConfigurationMissing Kind = "configuration_missing"
	KindPrerequisiteUnmet    Kind = "prerequisite_unmet"
	KindProcessLaunch        Kind = "process_launch"
	KindExternalProcess      Kind = "external_process"
	KindOutputMissing        Kind = "output_missing"
	KindLogMissing           Kind = "log_missing"
	KindLogParse             Kind = "log_parse"
	KindUserAborted          Kind = "user_aborted"
	KindTimeout              Kind = "timeout"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalProcess
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error to the most specific marker it carries.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConfigurationMissing):
		return KindConfigurationMissing
	case errors.Is(err, ErrPrerequisiteUnmet):
		return KindPrerequisiteUnmet
	case errors.Is(err, ErrProcessLaunch):
		return KindProcessLaunch
	case errors.Is(err, ErrOutputMissing):
		return KindOutputMissing
	case errors.Is(err, ErrLogMissing):
		return KindLogMissing
	case errors.Is(err, ErrLogParse):
		return KindLogParse
	case errors.Is(err, ErrUserAborted):
		return KindUserAborted
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrExternalProcess):
		return KindExternalProcess
	default:
		return KindUnknown
	}
}

// Hint returns a short operator-facing suggestion for the error kind.
func Hint(err error) string {
	switch KindOf(err) {
	case KindConfigurationMissing:
		return "check tool paths and the Creation Kit extender settings"
	case KindPrerequisiteUnmet:
		return "run the stage that produces the missing artifact, or restart from an earlier stage"
	case KindProcessLaunch:
		return "verify the executable path and permissions"
	case KindOutputMissing:
		return "inspect the run log for tool errors"
	case KindLogMissing:
		return "the tool may have crashed before writing its log"
	case KindLogParse:
		return "inspect the run log for the failure marker"
	case KindTimeout:
		return "raise timing.log_wait_timeout_seconds or check whether the tool is stuck"
	default:
		return "check logs for details"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
