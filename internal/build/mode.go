package build

import (
	"fmt"
	"strings"
)

// Mode selects the precombine flavour and archive qualifiers.
type Mode int

const (
	Clean Mode = iota
	Filtered
	Xbox
)

// ParseMode accepts clean, filtered or xbox in any case.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "clean", "":
		return Clean, nil
	case "filtered":
		return Filtered, nil
	case "xbox":
		return Xbox, nil
	default:
		return Clean, fmt.Errorf("unknown build mode %q (expected clean, filtered or xbox)", value)
	}
}

func (m Mode) String() string {
	switch m {
	case Clean:
		return "clean"
	case Filtered:
		return "filtered"
	case Xbox:
		return "xbox"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// PrecombineArgs returns the Creation Kit arguments for precombine generation.
func (m Mode) PrecombineArgs() []string {
	if m == Clean {
		return []string{"clean", "all"}
	}
	return []string{"filtered", "all"}
}

// Archiver selects the archive back-end.
type Archiver int

const (
	Archive2 Archiver = iota
	BSArch
)

// ParseArchiver accepts archive2 or bsarch in any case.
func ParseArchiver(value string) (Archiver, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "archive2", "":
		return Archive2, nil
	case "bsarch":
		return BSArch, nil
	default:
		return Archive2, fmt.Errorf("unknown archiver %q (expected archive2 or bsarch)", value)
	}
}

func (a Archiver) String() string {
	if a == BSArch {
		return "bsarch"
	}
	return "archive2"
}
