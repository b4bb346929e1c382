package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for the coordination engine.
// Implementations: the SQLite store in this package and *postgres.Store.
type Store interface {
	// Agents
	ListAgents(ctx context.Context) ([]Agent, error)
	GetAgentByName(ctx context.Context, name string) (Agent, error)
	GetAgentByRole(ctx context.Context, role string) (Agent, error)
	ProvisionAgent(ctx context.Context, a Agent) (Agent, error)

	// Tasks
	CreateTask(ctx context.Context, p TaskParams) (int64, error)
	// CreateTaskIfAbsent is the dedup guard: a single atomic check-and-insert
	// keyed on (title, source) over non-completed tasks. Returns the task ID
	// and whether a row was inserted; a skip is not an error.
	CreateTaskIfAbsent(ctx context.Context, p TaskParams) (int64, bool, error)
	GetTask(ctx context.Context, taskID int64) (*Task, error)
	ListTasks(ctx context.Context, agentName string, limit int) ([]Task, error)
	UpdateTaskStatus(ctx context.Context, taskID int64, status, blockedReason string) error
	TasksCompletedOn(ctx context.Context, date string) ([]Task, error)
	TasksInProgress(ctx context.Context) ([]Task, error)
	TasksBlocked(ctx context.Context) ([]Task, error)
	TaskStatusCounts(ctx context.Context) (map[string]int64, error)

	// Messages
	CreateMessage(ctx context.Context, channel string, threadID *int64, sender, content string, mentions []string) (int64, error)

	// Notifications
	CreateNotification(ctx context.Context, p NotificationParams) (int64, error)
	ListPendingNotifications(ctx context.Context, priority string) ([]Notification, error)
	CountPendingNotifications(ctx context.Context) (int64, error)
	// MarkNotificationDelivered flips delivered false -> true. Returns false
	// when the notification was already delivered or does not exist; the flag
	// is never reset.
	MarkNotificationDelivered(ctx context.Context, notificationID int64) (bool, error)

	// Workload (derived, computed fresh per call)
	AgentWorkloads(ctx context.Context, date string) ([]Workload, error)
	AgentWorkload(ctx context.Context, agentName, date string) (Workload, error)

	// Standups
	UpsertStandup(ctx context.Context, s Standup) error
	GetStandup(ctx context.Context, date, agentScope string) (*Standup, error)

	// Activity log
	AppendActivity(ctx context.Context, agentID *string, description string) error
	ListActivity(ctx context.Context, limit int) ([]ActivityEntry, error)

	Close() error
}
