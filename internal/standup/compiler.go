// Package standup compiles the daily digest: task movement for a date,
// per-agent workload, external findings, and recent activity, persisted
// idempotently as one row per (date, scope).
package standup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eddiebe147/claude-automation-pipeline/internal/otel"
	"github.com/eddiebe147/claude-automation-pipeline/internal/report"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

// Compiler gathers and persists standup digests.
type Compiler struct {
	Store      store.Store
	ReportsDir string
	// ActivityN caps the recent-activity section.
	ActivityN int
	Log       *slog.Logger
}

// Digest is a compiled standup plus its rendered markdown.
type Digest struct {
	Standup  store.Standup
	Rendered string
}

// Compile builds the digest for a date (YYYY-MM-DD) and persists it.
// agentScope narrows the digest to one agent's tasks; empty means the whole
// system. Compiling the same (date, scope) twice updates the single existing
// row.
func (c *Compiler) Compile(ctx context.Context, date, agentScope string) (Digest, error) {
	log := c.logger()
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return Digest{}, fmt.Errorf("standup date %q: %w", date, err)
	}

	completed, err := c.Store.TasksCompletedOn(ctx, date)
	if err != nil {
		return Digest{}, err
	}
	inProgress, err := c.Store.TasksInProgress(ctx)
	if err != nil {
		return Digest{}, err
	}
	blocked, err := c.Store.TasksBlocked(ctx)
	if err != nil {
		return Digest{}, err
	}
	counts, err := c.Store.TaskStatusCounts(ctx)
	if err != nil {
		return Digest{}, err
	}
	workloads, err := c.Store.AgentWorkloads(ctx, date)
	if err != nil {
		return Digest{}, err
	}

	pendingCount := int(counts[store.StatusPending])
	if agentScope != "" {
		agent, err := c.Store.GetAgentByName(ctx, agentScope)
		if err != nil {
			return Digest{}, fmt.Errorf("standup scope %q: %w", agentScope, err)
		}
		completed = filterByAgent(completed, agent.AgentID)
		inProgress = filterByAgent(inProgress, agent.AgentID)
		blocked = filterByAgent(blocked, agent.AgentID)
		workloads = filterWorkloads(workloads, agent.AgentID)
		// Every count in a scoped row belongs to that agent, pending included.
		pendingCount = 0
		for _, w := range workloads {
			pendingCount += w.Pending
		}
	}

	findings := report.Load(log, c.ReportsDir, date)

	activityN := c.ActivityN
	if activityN <= 0 {
		activityN = 10
	}
	activity, err := c.Store.ListActivity(ctx, activityN)
	if err != nil {
		return Digest{}, err
	}

	names, err := c.agentNames(ctx)
	if err != nil {
		return Digest{}, err
	}

	s := store.Standup{
		StandupID:       uuid.NewString(),
		Date:            date,
		AgentScope:      agentScope,
		CompletedCount:  len(completed),
		InProgressCount: len(inProgress),
		BlockedCount:    len(blocked),
		PendingCount:    pendingCount,
		Highlight:       highlight(completed, blocked),
		FindingsSummary: findings.Summary(),
		GeneratedAt:     time.Now().UTC(),
	}
	rendered := render(s, completed, inProgress, blocked, workloads, findings, activity, names)

	if err := c.Store.UpsertStandup(ctx, s); err != nil {
		return Digest{}, fmt.Errorf("persist standup: %w", err)
	}
	if err := c.Store.AppendActivity(ctx, nil, fmt.Sprintf("standup compiled for %s", date)); err != nil {
		log.Warn("activity append failed", "err", err)
	}
	otel.RecordStandup(ctx)
	return Digest{Standup: s, Rendered: rendered}, nil
}

// highlight picks the one-line headline: most recently completed task wins,
// a blocker is surfaced when nothing finished.
func highlight(completed, blocked []store.Task) string {
	if len(completed) > 0 {
		return fmt.Sprintf("Completed: %s", completed[len(completed)-1].Title)
	}
	if len(blocked) > 0 {
		return fmt.Sprintf("Blocked: %s", blocked[0].Title)
	}
	return "No completed tasks"
}

func filterByAgent(tasks []store.Task, agentID string) []store.Task {
	out := tasks[:0:0]
	for _, t := range tasks {
		if t.AssignedTo != nil && *t.AssignedTo == agentID {
			out = append(out, t)
		}
	}
	return out
}

func filterWorkloads(ws []store.Workload, agentID string) []store.Workload {
	out := ws[:0:0]
	for _, w := range ws {
		if w.AgentID == agentID {
			out = append(out, w)
		}
	}
	return out
}

func (c *Compiler) agentNames(ctx context.Context) (map[string]string, error) {
	agents, err := c.Store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(agents))
	for _, a := range agents {
		names[a.AgentID] = a.Name
	}
	return names, nil
}

func (c *Compiler) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.Default()
}
