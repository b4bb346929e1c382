// Package report parses the dated artifacts produced by the external signal
// detectors (security scanner, performance tracker, habit streak counter).
// Each report kind has a named field contract; a missing field is an explicit
// ErrFieldMissing so format drift in a collaborator script is detected
// instead of silently ignored.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrFieldMissing is returned when a report lacks its documented field.
var ErrFieldMissing = errors.New("expected report field missing")

// UrgencyLevel is the security scanner's verdict.
type UrgencyLevel string

const (
	UrgencyInfo     UrgencyLevel = "info"
	UrgencyElevated UrgencyLevel = "elevated"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Actionable reports whether the level warrants a routed task.
func (u UrgencyLevel) Actionable() bool {
	return u == UrgencyHigh || u == UrgencyCritical
}

// SecurityFinding is the parsed security scan report. The scanner writes an
// "Urgency Level: X" line and optionally a "Summary: ..." line.
type SecurityFinding struct {
	Level   UrgencyLevel
	Summary string
}

// FocusFinding is the parsed performance tracker report, keyed on its
// "Focus Score: N%" line.
type FocusFinding struct {
	Score int
}

// ParseSecurityReport extracts the urgency level and optional summary.
func ParseSecurityReport(r io.Reader) (SecurityFinding, error) {
	var f SecurityFinding
	found := false
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if v, ok := labeledValue(line, "Urgency Level"); ok {
			level := UrgencyLevel(strings.ToLower(v))
			switch level {
			case UrgencyInfo, UrgencyElevated, UrgencyHigh, UrgencyCritical:
				f.Level = level
			default:
				return SecurityFinding{}, fmt.Errorf("unknown urgency level %q", v)
			}
			found = true
		}
		if v, ok := labeledValue(line, "Summary"); ok {
			f.Summary = v
		}
	}
	if err := sc.Err(); err != nil {
		return SecurityFinding{}, err
	}
	if !found {
		return SecurityFinding{}, fmt.Errorf("security report: %w: Urgency Level", ErrFieldMissing)
	}
	return f, nil
}

// ParseFocusReport extracts the focus score percentage.
func ParseFocusReport(r io.Reader) (FocusFinding, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		v, ok := labeledValue(line, "Focus Score")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(v, "%"))
		if err != nil {
			return FocusFinding{}, fmt.Errorf("focus score %q: %w", v, err)
		}
		return FocusFinding{Score: n}, nil
	}
	if err := sc.Err(); err != nil {
		return FocusFinding{}, err
	}
	return FocusFinding{}, fmt.Errorf("performance report: %w: Focus Score", ErrFieldMissing)
}

// ParseStreak reads the habit streak counter file: the first non-empty line
// must be an integer day count.
func ParseStreak(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("streak counter %q: %w", line, err)
		}
		return n, nil
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("streak counter: %w: day count", ErrFieldMissing)
}

// labeledValue matches "Label: value" lines case-insensitively on the label.
func labeledValue(line, label string) (string, bool) {
	if len(line) <= len(label) {
		return "", false
	}
	if !strings.EqualFold(line[:len(label)], label) {
		return "", false
	}
	rest := strings.TrimSpace(line[len(label):])
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}
