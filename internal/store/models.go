// Package store defines the persistence interface and shared models for the
// coordination engine: agents, tasks, messages, notifications, standups, and
// the activity log.
package store

import "time"

// Agent is a named, role-scoped worker identity. Provisioned once at setup;
// configuration fields may be updated, identity fields are immutable.
type Agent struct {
	AgentID          string
	Name             string
	Role             string // coordinator, dev, research, ops
	Model            string
	HeartbeatMinutes int
	Skills           []string
	CostTier         string // premium, cheap
	CreatedAt        time.Time
}

// Task is a routed work item. Tasks are never deleted, only transitioned to
// completed. AssignedTo is nil for unrouted/coordinator-owned work.
type Task struct {
	TaskID        int64
	Title         string
	Description   string
	Source        string
	AssignedTo    *string // agent_id
	Status        string  // pending, in_progress, blocked, completed
	Priority      int     // 1 (urgent) .. 5
	Category      string
	BlockedReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// TaskParams are the caller-supplied fields for task creation.
type TaskParams struct {
	Title       string
	Description string
	Source      string
	AssignedTo  *string
	Priority    int
	Category    string
}

// Message is one append-only chat entry with its parsed mention set.
type Message struct {
	MessageID int64
	Channel   string
	ThreadID  *int64
	Sender    string
	Content   string
	Mentions  []string // mentioned agent names, parse order, deduped
	CreatedAt time.Time
}

// Notification targets one agent and points back at the message or task that
// caused it. Once delivered it never goes back to pending.
type Notification struct {
	NotificationID int64
	AgentID        string
	AgentName      string // joined from agents for display; empty on insert
	Kind           string // mention, task_assigned, urgent
	SourceKind     string // message, task
	SourceID       int64
	Priority       string // normal, urgent
	Delivered      bool
	CreatedAt      time.Time
}

// NotificationParams are the caller-supplied fields for notification creation.
type NotificationParams struct {
	AgentID    string
	Kind       string
	SourceKind string
	SourceID   int64
	Priority   string
}

// Standup is the per-date aggregated digest. AgentScope is empty for the
// whole-system digest; at most one row exists per (date, scope).
type Standup struct {
	StandupID       string
	Date            string // YYYY-MM-DD
	AgentScope      string // agent name, or "" for whole system
	CompletedCount  int
	InProgressCount int
	BlockedCount    int
	PendingCount    int
	Highlight       string
	FindingsSummary string
	GeneratedAt     time.Time
}

// ActivityEntry is one append-only audit line.
type ActivityEntry struct {
	EntryID     int64
	AgentID     *string
	Description string
	CreatedAt   time.Time
}

// Workload is the on-demand per-agent task count; computed fresh from the
// tasks table on every call, never cached.
type Workload struct {
	AgentID        string
	AgentName      string
	Pending        int
	InProgress     int
	CompletedToday int
}

// Task statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusCompleted  = "completed"
)

// Notification kinds and priorities.
const (
	KindMention      = "mention"
	KindTaskAssigned = "task_assigned"
	KindUrgent       = "urgent"

	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Notification source kinds.
const (
	SourceMessage = "message"
	SourceTask    = "task"
)
