package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *sqliteStore) ListAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT agent_id, name, role, model, heartbeat_minutes, skills, cost_tier, created_at FROM agents ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetAgentByName(ctx context.Context, name string) (Agent, error) {
	row := s.stmtGetAgentByName.QueryRowContext(ctx, name)
	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, fmt.Errorf("agent %q: %w", name, ErrNotFound)
		}
		return Agent{}, err
	}
	return a, nil
}

func (s *sqliteStore) GetAgentByRole(ctx context.Context, role string) (Agent, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT agent_id, name, role, model, heartbeat_minutes, skills, cost_tier, created_at FROM agents WHERE role = ? ORDER BY created_at ASC LIMIT 1`, role)
	a, err := scanAgent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, fmt.Errorf("no agent with role %q: %w", role, ErrNotFound)
		}
		return Agent{}, err
	}
	return a, nil
}

// ProvisionAgent inserts the agent or, when the name already exists, updates
// its configuration fields. Identity (agent_id, name) is preserved.
func (s *sqliteStore) ProvisionAgent(ctx context.Context, a Agent) (Agent, error) {
	if a.Name == "" {
		return Agent{}, errors.New("agent name required")
	}
	if a.Role == "" {
		return Agent{}, errors.New("agent role required")
	}
	if a.AgentID == "" {
		a.AgentID = uuid.NewString()
	}
	if a.HeartbeatMinutes <= 0 {
		a.HeartbeatMinutes = 30
	}
	if a.CostTier == "" {
		a.CostTier = "cheap"
	}
	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO agents(agent_id, name, role, model, heartbeat_minutes, skills, cost_tier, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  role=excluded.role,
  model=excluded.model,
  heartbeat_minutes=excluded.heartbeat_minutes,
  skills=excluded.skills,
  cost_tier=excluded.cost_tier`,
		a.AgentID, a.Name, a.Role, a.Model, a.HeartbeatMinutes, joinTags(a.Skills), a.CostTier, now)
	if err != nil {
		return Agent{}, err
	}
	return s.GetAgentByName(ctx, a.Name)
}

func (s *sqliteStore) CreateTask(ctx context.Context, p TaskParams) (int64, error) {
	if err := validateTaskParams(&p); err != nil {
		return 0, err
	}
	now := time.Now().UTC().Unix()
	res, err := s.stmtCreateTask.ExecContext(ctx, p.Title, p.Description, p.Source, toNull(p.AssignedTo), p.Priority, p.Category, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateTaskIfAbsent relies on the partial unique index over non-completed
// (title, source) pairs, so the check and the insert are one statement and
// concurrent importers cannot both win.
func (s *sqliteStore) CreateTaskIfAbsent(ctx context.Context, p TaskParams) (int64, bool, error) {
	if err := validateTaskParams(&p); err != nil {
		return 0, false, err
	}
	now := time.Now().UTC().Unix()
	res, err := s.stmtDedupTask.ExecContext(ctx, p.Title, p.Description, p.Source, toNull(p.AssignedTo), p.Priority, p.Category, now, now)
	if err != nil {
		return 0, false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		id, err := res.LastInsertId()
		return id, true, err
	}
	var id int64
	err = s.DB.QueryRowContext(ctx, `SELECT task_id FROM tasks WHERE title = ? AND source = ? AND status != 'completed' LIMIT 1`, p.Title, p.Source).Scan(&id)
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func validateTaskParams(p *TaskParams) error {
	if p.Title == "" {
		return errors.New("title required")
	}
	if p.Source == "" {
		p.Source = "manual"
	}
	if p.Priority < 1 || p.Priority > 5 {
		p.Priority = 3
	}
	return nil
}

func (s *sqliteStore) GetTask(ctx context.Context, taskID int64) (*Task, error) {
	row := s.stmtGetTask.QueryRowContext(ctx, taskID)
	t, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *sqliteStore) ListTasks(ctx context.Context, agentName string, limit int) ([]Task, error) {
	q := `SELECT t.task_id, t.title, t.description, t.source, t.assigned_to, t.status, t.priority, t.category, t.blocked_reason, t.created_at, t.updated_at, t.completed_at FROM tasks t`
	var args []any
	if agentName != "" {
		q += ` JOIN agents a ON a.agent_id = t.assigned_to WHERE a.name = ?`
		args = append(args, agentName)
	}
	q += ` ORDER BY t.created_at DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryTasks(ctx, q, args...)
}

// UpdateTaskStatus transitions a task. Blocked requires a reason; leaving
// blocked clears it. Completing stamps completed_at.
func (s *sqliteStore) UpdateTaskStatus(ctx context.Context, taskID int64, status, blockedReason string) error {
	switch status {
	case StatusPending, StatusInProgress, StatusBlocked, StatusCompleted:
	default:
		return fmt.Errorf("invalid task status %q", status)
	}
	if status == StatusBlocked && blockedReason == "" {
		return errors.New("blocked status requires a reason")
	}
	if status != StatusBlocked {
		blockedReason = ""
	}
	now := time.Now().UTC().Unix()

	var reason any
	if blockedReason != "" {
		reason = blockedReason
	}
	var completedAt any
	if status == StatusCompleted {
		completedAt = now
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE tasks SET status=?, blocked_reason=?, completed_at=COALESCE(?, completed_at), updated_at=? WHERE task_id=?`,
		status, reason, completedAt, now, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	return nil
}

func (s *sqliteStore) TasksCompletedOn(ctx context.Context, date string) ([]Task, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	q := `SELECT task_id, title, description, source, assigned_to, status, priority, category, blocked_reason, created_at, updated_at, completed_at
FROM tasks WHERE status = 'completed' AND completed_at >= ? AND completed_at < ? ORDER BY completed_at ASC`
	return s.queryTasks(ctx, q, start, end)
}

func (s *sqliteStore) TasksInProgress(ctx context.Context) ([]Task, error) {
	q := `SELECT task_id, title, description, source, assigned_to, status, priority, category, blocked_reason, created_at, updated_at, completed_at
FROM tasks WHERE status = 'in_progress' ORDER BY priority ASC, updated_at DESC`
	return s.queryTasks(ctx, q)
}

func (s *sqliteStore) TasksBlocked(ctx context.Context) ([]Task, error) {
	q := `SELECT task_id, title, description, source, assigned_to, status, priority, category, blocked_reason, created_at, updated_at, completed_at
FROM tasks WHERE status = 'blocked' ORDER BY updated_at ASC`
	return s.queryTasks(ctx, q)
}

func (s *sqliteStore) TaskStatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string]int64)
	for rows.Next() {
		var st string
		var n int64
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (s *sqliteStore) queryTasks(ctx context.Context, q string, args ...any) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// scanTaskRow scans the current row (columns in order: task_id, title,
// description, source, assigned_to, status, priority, category,
// blocked_reason, created_at, updated_at, completed_at).
func scanTaskRow(row interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		t           Task
		assignedTo  sql.NullString
		reason      sql.NullString
		createdAt   int64
		updatedAt   int64
		completedAt sql.NullInt64
	)
	err := row.Scan(&t.TaskID, &t.Title, &t.Description, &t.Source, &assignedTo, &t.Status, &t.Priority, &t.Category, &reason, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.String
	}
	if reason.Valid {
		t.BlockedReason = &reason.String
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if completedAt.Valid {
		done := time.Unix(completedAt.Int64, 0).UTC()
		t.CompletedAt = &done
	}
	return &t, nil
}

func scanAgent(row interface{ Scan(dest ...any) error }) (Agent, error) {
	var (
		a         Agent
		skills    string
		createdAt int64
	)
	err := row.Scan(&a.AgentID, &a.Name, &a.Role, &a.Model, &a.HeartbeatMinutes, &skills, &a.CostTier, &createdAt)
	if err != nil {
		return Agent{}, err
	}
	a.Skills = splitTags(skills)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return a, nil
}

func (s *sqliteStore) CreateMessage(ctx context.Context, channel string, threadID *int64, sender, content string, mentions []string) (int64, error) {
	if sender == "" {
		return 0, errors.New("sender required")
	}
	if channel == "" {
		channel = "general"
	}
	now := time.Now().UTC().Unix()
	var thread any
	if threadID != nil {
		thread = *threadID
	}
	res, err := s.DB.ExecContext(ctx, `INSERT INTO messages(channel, thread_id, sender, content, mentions, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		channel, thread, sender, content, joinTags(mentions), now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) CreateNotification(ctx context.Context, p NotificationParams) (int64, error) {
	if p.AgentID == "" {
		return 0, errors.New("notification agent required")
	}
	if p.Kind == "" {
		return 0, errors.New("notification kind required")
	}
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	now := time.Now().UTC().Unix()
	res, err := s.stmtCreateNotif.ExecContext(ctx, p.AgentID, p.Kind, p.SourceKind, p.SourceID, p.Priority, now)
	if err != nil {
		// Foreign key failure means the target agent does not exist; surface
		// it as an integrity error rather than a generic driver error.
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return 0, fmt.Errorf("notification target agent %q: %w", p.AgentID, ErrNotFound)
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) ListPendingNotifications(ctx context.Context, priority string) ([]Notification, error) {
	q := `SELECT notification_id, agent_id, agent_name, kind, source_kind, source_id, priority, created_at FROM pending_notifications`
	var args []any
	if priority != "" {
		q += ` WHERE priority = ?`
		args = append(args, priority)
	}
	q += ` ORDER BY created_at ASC`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Notification
	for rows.Next() {
		var n Notification
		var createdAt int64
		if err := rows.Scan(&n.NotificationID, &n.AgentID, &n.AgentName, &n.Kind, &n.SourceKind, &n.SourceID, &n.Priority, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *sqliteStore) CountPendingNotifications(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_notifications`).Scan(&n)
	return n, err
}

// MarkNotificationDelivered is a guarded UPDATE so delivered can only go
// false -> true; re-marking and unknown IDs report false without error.
func (s *sqliteStore) MarkNotificationDelivered(ctx context.Context, notificationID int64) (bool, error) {
	res, err := s.stmtMarkDelivered.ExecContext(ctx, notificationID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *sqliteStore) AgentWorkloads(ctx context.Context, date string) ([]Workload, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT
  w.agent_id, w.name, w.pending, w.in_progress,
  (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to = w.agent_id AND t.status = 'completed' AND t.completed_at >= ? AND t.completed_at < ?) AS completed_today
FROM agent_workload w
ORDER BY w.name ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Workload
	for rows.Next() {
		var w Workload
		if err := rows.Scan(&w.AgentID, &w.AgentName, &w.Pending, &w.InProgress, &w.CompletedToday); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *sqliteStore) AgentWorkload(ctx context.Context, agentName, date string) (Workload, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return Workload{}, err
	}
	var w Workload
	err = s.DB.QueryRowContext(ctx, `
SELECT
  w.agent_id, w.name, w.pending, w.in_progress,
  (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to = w.agent_id AND t.status = 'completed' AND t.completed_at >= ? AND t.completed_at < ?) AS completed_today
FROM agent_workload w
WHERE w.name = ?`, start, end, agentName).Scan(&w.AgentID, &w.AgentName, &w.Pending, &w.InProgress, &w.CompletedToday)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workload{}, fmt.Errorf("agent %q: %w", agentName, ErrNotFound)
		}
		return Workload{}, err
	}
	return w, nil
}

// UpsertStandup keeps at most one standup per (date, scope): re-running the
// compiler replaces the row's contents, never duplicates it.
func (s *sqliteStore) UpsertStandup(ctx context.Context, su Standup) error {
	if su.Date == "" {
		return errors.New("standup date required")
	}
	if su.StandupID == "" {
		su.StandupID = uuid.NewString()
	}
	if su.GeneratedAt.IsZero() {
		su.GeneratedAt = time.Now().UTC()
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO standups(standup_id, standup_date, agent_scope, completed_count, in_progress_count, blocked_count, pending_count, highlight, findings_summary, generated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(standup_date, agent_scope) DO UPDATE SET
  completed_count=excluded.completed_count,
  in_progress_count=excluded.in_progress_count,
  blocked_count=excluded.blocked_count,
  pending_count=excluded.pending_count,
  highlight=excluded.highlight,
  findings_summary=excluded.findings_summary,
  generated_at=excluded.generated_at`,
		su.StandupID, su.Date, su.AgentScope, su.CompletedCount, su.InProgressCount, su.BlockedCount, su.PendingCount, su.Highlight, su.FindingsSummary, su.GeneratedAt.Unix())
	return err
}

func (s *sqliteStore) GetStandup(ctx context.Context, date, agentScope string) (*Standup, error) {
	var su Standup
	var generatedAt int64
	err := s.DB.QueryRowContext(ctx, `
SELECT standup_id, standup_date, agent_scope, completed_count, in_progress_count, blocked_count, pending_count, highlight, findings_summary, generated_at
FROM standups WHERE standup_date = ? AND agent_scope = ?`, date, agentScope).
		Scan(&su.StandupID, &su.Date, &su.AgentScope, &su.CompletedCount, &su.InProgressCount, &su.BlockedCount, &su.PendingCount, &su.Highlight, &su.FindingsSummary, &generatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	su.GeneratedAt = time.Unix(generatedAt, 0).UTC()
	return &su, nil
}

func (s *sqliteStore) AppendActivity(ctx context.Context, agentID *string, description string) error {
	if description == "" {
		return errors.New("activity description required")
	}
	_, err := s.stmtAppendActivity.ExecContext(ctx, toNull(agentID), description, time.Now().UTC().Unix())
	return err
}

func (s *sqliteStore) ListActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT entry_id, agent_id, description, created_at FROM activity_log ORDER BY created_at DESC, entry_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var agentID sql.NullString
		var createdAt int64
		if err := rows.Scan(&e.EntryID, &agentID, &e.Description, &createdAt); err != nil {
			return nil, err
		}
		if agentID.Valid {
			e.AgentID = &agentID.String
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func toNull(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// dayRange converts a YYYY-MM-DD date into the [start, end) Unix range used
// by completed-today queries.
func dayRange(date string) (int64, int64, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return day.Unix(), day.Add(24 * time.Hour).Unix(), nil
}
