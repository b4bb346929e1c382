// Package engine orchestrates message intake: it parses mentions, fans out
// notifications, and optionally routes a task to the responsible agent.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eddiebe147/claude-automation-pipeline/internal/mention"
	"github.com/eddiebe147/claude-automation-pipeline/internal/otel"
	"github.com/eddiebe147/claude-automation-pipeline/internal/router"
	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

// Engine coordinates the store-backed intake pipeline.
type Engine struct {
	Store store.Store
	Log   *slog.Logger
}

// RouteOptions control one intake pass.
type RouteOptions struct {
	Sender   string
	Channel  string
	ThreadID *int64
	// CreateTask requests a task in addition to the message and its
	// notifications. Task creation is always explicit, never inferred from
	// the message text.
	CreateTask bool
	Category   string
	Title      string
}

// RouteResult reports what one intake pass produced.
type RouteResult struct {
	MessageID  int64
	Notified   []string
	Priority   string
	TaskID     int64
	AssignedTo string
}

// Route records the message, notifies every mentioned agent that exists in
// the roster, and, when requested, creates a routed task. A mention of a
// name with no roster agent is logged and skipped; it never fails the batch.
func (e *Engine) Route(ctx context.Context, content string, opts RouteOptions) (RouteResult, error) {
	log := e.logger()
	if strings.TrimSpace(content) == "" {
		return RouteResult{}, fmt.Errorf("message content is empty")
	}
	sender := opts.Sender
	if sender == "" {
		sender = "system"
	}
	channel := opts.Channel
	if channel == "" {
		channel = "general"
	}

	names := mention.Parse(content)
	roster, err := e.rosterNames(ctx)
	if err != nil {
		return RouteResult{}, err
	}
	names = mention.ExpandAll(names, roster)
	priority := mention.Priority(content)

	msgID, err := e.Store.CreateMessage(ctx, channel, opts.ThreadID, sender, content, names)
	if err != nil {
		return RouteResult{}, fmt.Errorf("record message: %w", err)
	}

	res := RouteResult{MessageID: msgID, Priority: priority}
	kind := store.KindMention
	if priority == store.PriorityUrgent {
		kind = store.KindUrgent
	}
	for _, name := range names {
		agent, err := e.Store.GetAgentByName(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("mentioned agent not in roster, skipped", "name", name)
				continue
			}
			return res, err
		}
		_, err = e.Store.CreateNotification(ctx, store.NotificationParams{
			AgentID:    agent.AgentID,
			Kind:       kind,
			SourceKind: store.SourceMessage,
			SourceID:   msgID,
			Priority:   priority,
		})
		if err != nil {
			return res, fmt.Errorf("notify %s: %w", name, err)
		}
		res.Notified = append(res.Notified, name)
	}

	if opts.CreateTask {
		taskID, assignee, err := e.createRoutedTask(ctx, content, msgID, priority, opts)
		if err != nil {
			return res, err
		}
		res.TaskID = taskID
		res.AssignedTo = assignee
	}

	if err := e.Store.AppendActivity(ctx, nil, fmt.Sprintf("message %d from %s notified %d agent(s)", msgID, sender, len(res.Notified))); err != nil {
		log.Warn("activity append failed", "err", err)
	}
	return res, nil
}

// Notify creates one direct notification for a named agent, bypassing
// mention parsing.
func (e *Engine) Notify(ctx context.Context, agentName, kind, priority string, sourceKind string, sourceID int64) (int64, error) {
	agent, err := e.Store.GetAgentByName(ctx, agentName)
	if err != nil {
		return 0, err
	}
	if kind == "" {
		kind = store.KindMention
	}
	if priority == "" {
		priority = store.PriorityNormal
	}
	if sourceKind == "" {
		sourceKind = store.SourceMessage
	}
	return e.Store.CreateNotification(ctx, store.NotificationParams{
		AgentID:    agent.AgentID,
		Kind:       kind,
		SourceKind: sourceKind,
		SourceID:   sourceID,
		Priority:   priority,
	})
}

func (e *Engine) createRoutedTask(ctx context.Context, content string, msgID int64, priority string, opts RouteOptions) (int64, string, error) {
	log := e.logger()
	role := router.RouteCategory(opts.Category)
	title := opts.Title
	if title == "" {
		title = taskTitle(content)
	}
	taskPriority := 3
	if priority == store.PriorityUrgent {
		taskPriority = 1
	}

	var assignedTo *string
	var assignee string
	agent, err := e.Store.GetAgentByRole(ctx, string(role))
	switch {
	case err == nil:
		assignedTo = &agent.AgentID
		assignee = agent.Name
	case errors.Is(err, store.ErrNotFound):
		log.Warn("no agent for role, task left unassigned", "role", role)
	default:
		return 0, "", err
	}

	taskID, err := e.Store.CreateTask(ctx, store.TaskParams{
		Title:       title,
		Description: content,
		Source:      fmt.Sprintf("message:%d", msgID),
		AssignedTo:  assignedTo,
		Priority:    taskPriority,
		Category:    strings.ToLower(strings.TrimSpace(opts.Category)),
	})
	if err != nil {
		return 0, "", fmt.Errorf("create task: %w", err)
	}
	otel.RecordTaskRouted(ctx, opts.Category, string(role))

	if assignedTo != nil {
		_, err = e.Store.CreateNotification(ctx, store.NotificationParams{
			AgentID:    *assignedTo,
			Kind:       store.KindTaskAssigned,
			SourceKind: store.SourceTask,
			SourceID:   taskID,
			Priority:   priority,
		})
		if err != nil {
			return taskID, assignee, fmt.Errorf("notify assignee: %w", err)
		}
	}
	return taskID, assignee, nil
}

func (e *Engine) rosterNames(ctx context.Context) ([]string, error) {
	agents, err := e.Store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.Name)
	}
	return names, nil
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// taskTitle derives a short title from message content: the first line,
// truncated.
func taskTitle(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > 80 {
		line = strings.TrimSpace(line[:80])
	}
	return line
}
