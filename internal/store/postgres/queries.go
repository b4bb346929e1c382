package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eddiebe147/claude-automation-pipeline/internal/store"
)

const agentCols = `agent_id, name, role, model, heartbeat_minutes, skills, cost_tier, created_at`
const taskCols = `task_id, title, description, source, assigned_to, status, priority, category, blocked_reason, created_at, updated_at, completed_at`

func (s *Store) ListAgents(ctx context.Context) ([]store.Agent, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+agentCols+` FROM agents ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) GetAgentByName(ctx context.Context, name string) (store.Agent, error) {
	a, err := scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentCols+` FROM agents WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Agent{}, fmt.Errorf("agent %q: %w", name, store.ErrNotFound)
		}
		return store.Agent{}, err
	}
	return a, nil
}

func (s *Store) GetAgentByRole(ctx context.Context, role string) (store.Agent, error) {
	a, err := scanAgent(s.Pool.QueryRow(ctx, `SELECT `+agentCols+` FROM agents WHERE role = $1 ORDER BY created_at ASC LIMIT 1`, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Agent{}, fmt.Errorf("no agent with role %q: %w", role, store.ErrNotFound)
		}
		return store.Agent{}, err
	}
	return a, nil
}

func (s *Store) ProvisionAgent(ctx context.Context, a store.Agent) (store.Agent, error) {
	if a.Name == "" {
		return store.Agent{}, errors.New("agent name required")
	}
	if a.Role == "" {
		return store.Agent{}, errors.New("agent role required")
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
	_, err := s.Pool.Exec(ctx, `
INSERT INTO agents(agent_id, name, role, model, heartbeat_minutes, skills, cost_tier, created_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT(name) DO UPDATE SET
  role=excluded.role,
  model=excluded.model,
  heartbeat_minutes=excluded.heartbeat_minutes,
  skills=excluded.skills,
  cost_tier=excluded.cost_tier`,
		a.AgentID, a.Name, a.Role, a.Model, a.HeartbeatMinutes, strings.Join(a.Skills, ","), a.CostTier, time.Now().UTC().Unix())
	if err != nil {
		return store.Agent{}, err
	}
	return s.GetAgentByName(ctx, a.Name)
}

func (s *Store) CreateTask(ctx context.Context, p store.TaskParams) (int64, error) {
	if err := normalizeTaskParams(&p); err != nil {
		return 0, err
	}
	now := time.Now().UTC().Unix()
	var id int64
	err := s.Pool.QueryRow(ctx, `
INSERT INTO tasks(title, description, source, assigned_to, status, priority, category, created_at, updated_at)
VALUES($1, $2, $3, $4, 'pending', $5, $6, $7, $8)
RETURNING task_id`,
		p.Title, p.Description, p.Source, p.AssignedTo, p.Priority, p.Category, now, now).Scan(&id)
	return id, err
}

func (s *Store) CreateTaskIfAbsent(ctx context.Context, p store.TaskParams) (int64, bool, error) {
	if err := normalizeTaskParams(&p); err != nil {
		return 0, false, err
	}
	now := time.Now().UTC().Unix()
	var id int64
	err := s.Pool.QueryRow(ctx, `
INSERT INTO tasks(title, description, source, assigned_to, status, priority, category, created_at, updated_at)
VALUES($1, $2, $3, $4, 'pending', $5, $6, $7, $8)
ON CONFLICT (title, source) WHERE status <> 'completed' DO NOTHING
RETURNING task_id`,
		p.Title, p.Description, p.Source, p.AssignedTo, p.Priority, p.Category, now, now).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}
	err = s.Pool.QueryRow(ctx, `SELECT task_id FROM tasks WHERE title = $1 AND source = $2 AND status <> 'completed' LIMIT 1`, p.Title, p.Source).Scan(&id)
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func normalizeTaskParams(p *store.TaskParams) error {
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

func (s *Store) GetTask(ctx context.Context, taskID int64) (*store.Task, error) {
	t, err := scanTask(s.Pool.QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE task_id = $1`, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, agentName string, limit int) ([]store.Task, error) {
	q := `SELECT t.task_id, t.title, t.description, t.source, t.assigned_to, t.status, t.priority, t.category, t.blocked_reason, t.created_at, t.updated_at, t.completed_at FROM tasks t`
	var args []any
	if agentName != "" {
		q += ` JOIN agents a ON a.agent_id = t.assigned_to WHERE a.name = $1`
		args = append(args, agentName)
	}
	q += ` ORDER BY t.created_at DESC`
	if limit > 0 {
		q += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}
	return s.queryTasks(ctx, q, args...)
}

func (s *Store) UpdateTaskStatus(ctx context.Context, taskID int64, status, blockedReason string) error {
	switch status {
	case store.StatusPending, store.StatusInProgress, store.StatusBlocked, store.StatusCompleted:
	default:
		return fmt.Errorf("invalid task status %q", status)
	}
	if status == store.StatusBlocked && blockedReason == "" {
		return errors.New("blocked status requires a reason")
	}
	if status != store.StatusBlocked {
		blockedReason = ""
	}
	now := time.Now().UTC().Unix()
	var reason *string
	if blockedReason != "" {
		reason = &blockedReason
	}
	var completedAt *int64
	if status == store.StatusCompleted {
		completedAt = &now
	}
	tag, err := s.Pool.Exec(ctx, `UPDATE tasks SET status=$1, blocked_reason=$2, completed_at=COALESCE($3, completed_at), updated_at=$4 WHERE task_id=$5`,
		status, reason, completedAt, now, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %d: %w", taskID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) TasksCompletedOn(ctx context.Context, date string) ([]store.Task, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, `SELECT `+taskCols+` FROM tasks WHERE status = 'completed' AND completed_at >= $1 AND completed_at < $2 ORDER BY completed_at ASC`, start, end)
}

func (s *Store) TasksInProgress(ctx context.Context) ([]store.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskCols+` FROM tasks WHERE status = 'in_progress' ORDER BY priority ASC, updated_at DESC`)
}

func (s *Store) TasksBlocked(ctx context.Context) ([]store.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskCols+` FROM tasks WHERE status = 'blocked' ORDER BY updated_at ASC`)
}

func (s *Store) TaskStatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.Pool.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
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

func (s *Store) queryTasks(ctx context.Context, q string, args ...any) ([]store.Task, error) {
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *Store) CreateMessage(ctx context.Context, channel string, threadID *int64, sender, content string, mentions []string) (int64, error) {
	if sender == "" {
		return 0, errors.New("sender required")
	}
	if channel == "" {
		channel = "general"
	}
	var id int64
	err := s.Pool.QueryRow(ctx, `
INSERT INTO messages(channel, thread_id, sender, content, mentions, created_at)
VALUES($1, $2, $3, $4, $5, $6)
RETURNING message_id`,
		channel, threadID, sender, content, strings.Join(mentions, ","), time.Now().UTC().Unix()).Scan(&id)
	return id, err
}

func (s *Store) CreateNotification(ctx context.Context, p store.NotificationParams) (int64, error) {
	if p.AgentID == "" {
		return 0, errors.New("notification agent required")
	}
	if p.Kind == "" {
		return 0, errors.New("notification kind required")
	}
	if p.Priority == "" {
		p.Priority = store.PriorityNormal
	}
	var id int64
	err := s.Pool.QueryRow(ctx, `
INSERT INTO notifications(agent_id, kind, source_kind, source_id, priority, created_at)
VALUES($1, $2, $3, $4, $5, $6)
RETURNING notification_id`,
		p.AgentID, p.Kind, p.SourceKind, p.SourceID, p.Priority, time.Now().UTC().Unix()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("notification target agent %q: %w", p.AgentID, store.ErrNotFound)
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) ListPendingNotifications(ctx context.Context, priority string) ([]store.Notification, error) {
	q := `SELECT notification_id, agent_id, agent_name, kind, source_kind, source_id, priority, created_at FROM pending_notifications`
	var args []any
	if priority != "" {
		q += ` WHERE priority = $1`
		args = append(args, priority)
	}
	q += ` ORDER BY created_at ASC`
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Notification
	for rows.Next() {
		var n store.Notification
		var createdAt int64
		if err := rows.Scan(&n.NotificationID, &n.AgentID, &n.AgentName, &n.Kind, &n.SourceKind, &n.SourceID, &n.Priority, &createdAt); err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountPendingNotifications(ctx context.Context) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM pending_notifications`).Scan(&n)
	return n, err
}

func (s *Store) MarkNotificationDelivered(ctx context.Context, notificationID int64) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `UPDATE notifications SET delivered=TRUE WHERE notification_id=$1 AND delivered=FALSE`, notificationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) AgentWorkloads(ctx context.Context, date string) ([]store.Workload, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(ctx, `
SELECT
  w.agent_id, w.name, w.pending, w.in_progress,
  (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to = w.agent_id AND t.status = 'completed' AND t.completed_at >= $1 AND t.completed_at < $2) AS completed_today
FROM agent_workload w
ORDER BY w.name ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.Workload
	for rows.Next() {
		var w store.Workload
		if err := rows.Scan(&w.AgentID, &w.AgentName, &w.Pending, &w.InProgress, &w.CompletedToday); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) AgentWorkload(ctx context.Context, agentName, date string) (store.Workload, error) {
	start, end, err := dayRange(date)
	if err != nil {
		return store.Workload{}, err
	}
	var w store.Workload
	err = s.Pool.QueryRow(ctx, `
SELECT
  w.agent_id, w.name, w.pending, w.in_progress,
  (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to = w.agent_id AND t.status = 'completed' AND t.completed_at >= $1 AND t.completed_at < $2) AS completed_today
FROM agent_workload w
WHERE w.name = $3`, start, end, agentName).Scan(&w.AgentID, &w.AgentName, &w.Pending, &w.InProgress, &w.CompletedToday)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Workload{}, fmt.Errorf("agent %q: %w", agentName, store.ErrNotFound)
		}
		return store.Workload{}, err
	}
	return w, nil
}

func (s *Store) UpsertStandup(ctx context.Context, su store.Standup) error {
	if su.Date == "" {
		return errors.New("standup date required")
	}
	if su.StandupID == "" {
		su.StandupID = uuid.NewString()
	}
	if su.GeneratedAt.IsZero() {
		su.GeneratedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
INSERT INTO standups(standup_id, standup_date, agent_scope, completed_count, in_progress_count, blocked_count, pending_count, highlight, findings_summary, generated_at)
VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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

func (s *Store) GetStandup(ctx context.Context, date, agentScope string) (*store.Standup, error) {
	var su store.Standup
	var generatedAt int64
	err := s.Pool.QueryRow(ctx, `
SELECT standup_id, standup_date, agent_scope, completed_count, in_progress_count, blocked_count, pending_count, highlight, findings_summary, generated_at
FROM standups WHERE standup_date = $1 AND agent_scope = $2`, date, agentScope).
		Scan(&su.StandupID, &su.Date, &su.AgentScope, &su.CompletedCount, &su.InProgressCount, &su.BlockedCount, &su.PendingCount, &su.Highlight, &su.FindingsSummary, &generatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	su.GeneratedAt = time.Unix(generatedAt, 0).UTC()
	return &su, nil
}

func (s *Store) AppendActivity(ctx context.Context, agentID *string, description string) error {
	if description == "" {
		return errors.New("activity description required")
	}
	_, err := s.Pool.Exec(ctx, `INSERT INTO activity_log(agent_id, description, created_at) VALUES($1, $2, $3)`, agentID, description, time.Now().UTC().Unix())
	return err
}

func (s *Store) ListActivity(ctx context.Context, limit int) ([]store.ActivityEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.Pool.Query(ctx, `SELECT entry_id, agent_id, description, created_at FROM activity_log ORDER BY created_at DESC, entry_id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.ActivityEntry
	for rows.Next() {
		var e store.ActivityEntry
		var createdAt int64
		if err := rows.Scan(&e.EntryID, &e.AgentID, &e.Description, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAgent(row pgx.Row) (store.Agent, error) {
	var (
		a         store.Agent
		skills    string
		createdAt int64
	)
	err := row.Scan(&a.AgentID, &a.Name, &a.Role, &a.Model, &a.HeartbeatMinutes, &skills, &a.CostTier, &createdAt)
	if err != nil {
		return store.Agent{}, err
	}
	if skills != "" {
		a.Skills = strings.Split(skills, ",")
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	return a, nil
}

func scanTask(row pgx.Row) (*store.Task, error) {
	var (
		t           store.Task
		completedAt *int64
		createdAt   int64
		updatedAt   int64
	)
	err := row.Scan(&t.TaskID, &t.Title, &t.Description, &t.Source, &t.AssignedTo, &t.Status, &t.Priority, &t.Category, &t.BlockedReason, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if completedAt != nil {
		done := time.Unix(*completedAt, 0).UTC()
		t.CompletedAt = &done
	}
	return &t, nil
}

func dayRange(date string) (int64, int64, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	return day.Unix(), day.Add(24 * time.Hour).Unix(), nil
}
