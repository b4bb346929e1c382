package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Findings is the merged snapshot of all collaborator reports for one date.
// Nil fields mean the source was missing or unparseable; the consumer renders
// those as explicit "no data" lines rather than dropping the section.
type Findings struct {
	Security *SecurityFinding
	Focus    *FocusFinding
	Streak   *int
}

// Report filename conventions inside the reports directory.
func securityPath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("security-report-%s.md", date))
}

func performancePath(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("performance-report-%s.md", date))
}

func streakPath(dir string) string {
	return filepath.Join(dir, "streak.txt")
}

// Load gathers all findings for a date. A missing or malformed source is a
// transient collaborator failure: it is logged, skipped, and the rest of the
// batch proceeds with partial data.
func Load(log *slog.Logger, dir, date string) Findings {
	var f Findings

	if sec, err := loadSecurity(dir, date); err != nil {
		log.Warn("security report unavailable", "date", date, "err", err)
	} else {
		f.Security = &sec
	}
	if focus, err := loadFocus(dir, date); err != nil {
		log.Warn("performance report unavailable", "date", date, "err", err)
	} else {
		f.Focus = &focus
	}
	if streak, err := loadStreak(dir); err != nil {
		log.Warn("streak counter unavailable", "err", err)
	} else {
		f.Streak = &streak
	}
	return f
}

func loadSecurity(dir, date string) (SecurityFinding, error) {
	fh, err := os.Open(securityPath(dir, date))
	if err != nil {
		return SecurityFinding{}, err
	}
	defer func() { _ = fh.Close() }()
	return ParseSecurityReport(fh)
}

func loadFocus(dir, date string) (FocusFinding, error) {
	fh, err := os.Open(performancePath(dir, date))
	if err != nil {
		return FocusFinding{}, err
	}
	defer func() { _ = fh.Close() }()
	return ParseFocusReport(fh)
}

func loadStreak(dir string) (int, error) {
	fh, err := os.Open(streakPath(dir))
	if err != nil {
		return 0, err
	}
	defer func() { _ = fh.Close() }()
	return ParseStreak(fh)
}

// Summary renders the merged findings as a single line-per-source block with
// explicit no-data markers.
func (f Findings) Summary() string {
	var b strings.Builder
	if f.Security != nil {
		fmt.Fprintf(&b, "Security: urgency %s", f.Security.Level)
		if f.Security.Summary != "" {
			fmt.Fprintf(&b, " (%s)", f.Security.Summary)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Security: no data\n")
	}
	if f.Focus != nil {
		fmt.Fprintf(&b, "Focus score: %d%%\n", f.Focus.Score)
	} else {
		b.WriteString("Focus score: no data\n")
	}
	if f.Streak != nil {
		fmt.Fprintf(&b, "Habit streak: %d days\n", *f.Streak)
	} else {
		b.WriteString("Habit streak: no data\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
