package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecurityReport(t *testing.T) {
	t.Parallel()

	f, err := ParseSecurityReport(strings.NewReader(`# Daily Security Scan

Urgency Level: high
Summary: exposed port 8080 on staging
`))
	require.NoError(t, err)
	assert.Equal(t, UrgencyHigh, f.Level)
	assert.Equal(t, "exposed port 8080 on staging", f.Summary)
	assert.True(t, f.Level.Actionable())
}

func TestParseSecurityReportSummaryOptional(t *testing.T) {
	t.Parallel()

	f, err := ParseSecurityReport(strings.NewReader("Urgency Level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, UrgencyInfo, f.Level)
	assert.Empty(t, f.Summary)
	assert.False(t, f.Level.Actionable())
}

func TestParseSecurityReportMissingLevel(t *testing.T) {
	t.Parallel()

	_, err := ParseSecurityReport(strings.NewReader("# scan ran fine, nothing to see\n"))
	assert.ErrorIs(t, err, ErrFieldMissing)
}

func TestParseSecurityReportUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := ParseSecurityReport(strings.NewReader("Urgency Level: catastrophic\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFieldMissing)
}

func TestUrgencyLevelActionable(t *testing.T) {
	t.Parallel()

	assert.False(t, UrgencyInfo.Actionable())
	assert.False(t, UrgencyElevated.Actionable())
	assert.True(t, UrgencyHigh.Actionable())
	assert.True(t, UrgencyCritical.Actionable())
}

func TestParseFocusReport(t *testing.T) {
	t.Parallel()

	f, err := ParseFocusReport(strings.NewReader(`# Performance

Focus Score: 82%
Deep work blocks: 3
`))
	require.NoError(t, err)
	assert.Equal(t, 82, f.Score)

	_, err = ParseFocusReport(strings.NewReader("nothing relevant\n"))
	assert.ErrorIs(t, err, ErrFieldMissing)

	_, err = ParseFocusReport(strings.NewReader("Focus Score: lots\n"))
	require.Error(t, err)
}

func TestParseStreak(t *testing.T) {
	t.Parallel()

	n, err := ParseStreak(strings.NewReader("\n  14\n"))
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	_, err = ParseStreak(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrFieldMissing)

	_, err = ParseStreak(strings.NewReader("fourteen\n"))
	require.Error(t, err)
}
