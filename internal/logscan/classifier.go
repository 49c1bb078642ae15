package logscan

import "strings"

// Severity grades a classification outcome.
type Severity int

const (
	Pass Severity = iota
	Warn
	Fail
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return "pass"
	}
}

// Trigger decides whether a rule fires on the marker's presence or absence.
type Trigger int

const (
	Present Trigger = iota
	Absent
)

// Rule matches one literal marker in a tool log.
type Rule struct {
	Name     string
	Marker   string
	When     Trigger
	Severity Severity
	Reason   string
}

func (r Rule) fires(text string) bool {
	found := strings.Contains(text, r.Marker)
	if r.When == Absent {
		return !found
	}
	return found
}

// Outcome is the verdict for a single log.
type Outcome struct {
	Severity Severity
	Rule     string
	Reason   string
	// Warnings lists the reasons of every warning rule that fired.
	Warnings []string
}

// Failed reports whether the outcome blocks the stage.
func (o Outcome) Failed() bool {
	return o.Severity == Fail
}

// Classifier turns raw log text into an Outcome.
type Classifier interface {
	Classify(text string) Outcome
}

// Rules is an ordered rule set. The first failing rule wins; warnings are
// collected otherwise.
type Rules []Rule

func (rs Rules) Classify(text string) Outcome {
	out := Outcome{Severity: Pass}
	for _, rule := range rs {
		if !rule.fires(text) {
			continue
		}
		switch rule.Severity {
		case Fail:
			out.Severity = Fail
			out.Rule = rule.Name
			out.Reason = rule.Reason
			return out
		case Warn:
			if out.Severity == Pass {
				out.Severity = Warn
				out.Rule = rule.Name
				out.Reason = rule.Reason
			}
			out.Warnings = append(out.Warnings, rule.Reason)
		}
	}
	return out
}

// Combine concatenates rule sets in order.
func Combine(sets ...Rules) Rules {
	var out Rules
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}
