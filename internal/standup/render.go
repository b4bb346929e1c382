package standup

import (
	"fmt"
	"strings"

	"github.com/eddiebe147/claude-automation-pipeline/internal/report"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

// render produces the standup markdown. Every section is always present;
// empty ones carry an explicit "none" line so a thin day is distinguishable
// from a broken compiler.
func render(s store.Standup, completed, inProgress, blocked []store.Task, workloads []store.Workload, findings report.Findings, activity []store.ActivityEntry, agentNames map[string]string) string {
	var b strings.Builder

	title := fmt.Sprintf("# Standup %s", s.Date)
	if s.AgentScope != "" {
		title += fmt.Sprintf(" (@%s)", s.AgentScope)
	}
	b.WriteString(title + "\n\n")
	fmt.Fprintf(&b, "> %s\n\n", s.Highlight)

	b.WriteString("## Completed today\n")
	writeTasks(&b, completed, agentNames, false)

	b.WriteString("\n## In progress\n")
	writeTasks(&b, inProgress, agentNames, false)

	b.WriteString("\n## Blocked\n")
	writeTasks(&b, blocked, agentNames, true)

	b.WriteString("\n## Workload\n")
	if len(workloads) == 0 {
		b.WriteString("- none\n")
	}
	for _, w := range workloads {
		fmt.Fprintf(&b, "- @%s: %d pending, %d in progress, %d completed today\n",
			w.AgentName, w.Pending, w.InProgress, w.CompletedToday)
	}

	b.WriteString("\n## Findings\n")
	for _, line := range strings.Split(findings.Summary(), "\n") {
		b.WriteString("- " + line + "\n")
	}

	b.WriteString("\n## Recent activity\n")
	if len(activity) == 0 {
		b.WriteString("- none\n")
	}
	for _, a := range activity {
		fmt.Fprintf(&b, "- %s %s\n", a.CreatedAt.UTC().Format("15:04"), a.Description)
	}

	return b.String()
}

func writeTasks(b *strings.Builder, tasks []store.Task, agentNames map[string]string, withReason bool) {
	if len(tasks) == 0 {
		b.WriteString("- none\n")
		return
	}
	for _, t := range tasks {
		line := fmt.Sprintf("- [#%d] %s", t.TaskID, t.Title)
		if t.AssignedTo != nil {
			if name, ok := agentNames[*t.AssignedTo]; ok {
				line += " (@" + name + ")"
			}
		}
		if withReason && t.BlockedReason != nil {
			line += " - blocked: " + *t.BlockedReason
		}
		b.WriteString(line + "\n")
	}
}
