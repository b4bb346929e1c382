// Package ingest imports external report findings into the coordination
// store. Actionable security findings become routed tasks through the dedup
// guard, so the importer is safe to re-run for the same date.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eddiebe147/claude-automation-pipeline/internal/report"
	"github.com/eddiebe147/claude-automation-pipeline/internal/router"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

const securitySource = "security-scan"

// Importer reads the day's report files and syncs them into the store.
type Importer struct {
	Store      store.Store
	ReportsDir string
	Log        *slog.Logger
}

// Result summarizes one import pass.
type Result struct {
	Findings     report.Findings
	TasksCreated int
	TasksSkipped int
}

// Run loads the findings for date and imports actionable ones. Missing or
// malformed report files are logged and skipped; a re-run for the same date
// creates no duplicate tasks.
func (i *Importer) Run(ctx context.Context, date string) (Result, error) {
	log := i.logger()
	findings := report.Load(log, i.ReportsDir, date)
	res := Result{Findings: findings}

	if findings.Security != nil && findings.Security.Level.Actionable() {
		created, err := i.importSecurity(ctx, date, *findings.Security)
		if err != nil {
			return res, err
		}
		if created {
			res.TasksCreated++
		} else {
			res.TasksSkipped++
			log.Info("security task already open, skipped", "date", date)
		}
	}

	if err := i.Store.AppendActivity(ctx, nil, fmt.Sprintf("report sync for %s: %d task(s) created, %d skipped", date, res.TasksCreated, res.TasksSkipped)); err != nil {
		log.Warn("activity append failed", "err", err)
	}
	return res, nil
}

func (i *Importer) importSecurity(ctx context.Context, date string, sec report.SecurityFinding) (bool, error) {
	log := i.logger()
	title := fmt.Sprintf("Security scan %s: %s urgency", date, sec.Level)
	description := sec.Summary
	if description == "" {
		description = fmt.Sprintf("Security scanner reported %s urgency on %s.", sec.Level, date)
	}

	var assignedTo *string
	agent, err := i.Store.GetAgentByRole(ctx, string(router.RouteCategory("security")))
	switch {
	case err == nil:
		assignedTo = &agent.AgentID
	case errors.Is(err, store.ErrNotFound):
		log.Warn("no ops agent provisioned, security task left unassigned")
	default:
		return false, err
	}

	taskID, created, err := i.Store.CreateTaskIfAbsent(ctx, store.TaskParams{
		Title:       title,
		Description: description,
		Source:      securitySource,
		AssignedTo:  assignedTo,
		Priority:    1,
		Category:    "security",
	})
	if err != nil {
		return false, fmt.Errorf("import security finding: %w", err)
	}
	if !created {
		return false, nil
	}

	if assignedTo != nil {
		_, err = i.Store.CreateNotification(ctx, store.NotificationParams{
			AgentID:    *assignedTo,
			Kind:       store.KindTaskAssigned,
			SourceKind: store.SourceTask,
			SourceID:   taskID,
			Priority:   store.PriorityUrgent,
		})
		if err != nil {
			return true, fmt.Errorf("notify security assignee: %w", err)
		}
	}
	return true, nil
}

func (i *Importer) logger() *slog.Logger {
	if i.Log != nil {
		return i.Log
	}
	return slog.Default()
}
