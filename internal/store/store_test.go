package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	st, err := Open(home)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func provisionTestAgent(t *testing.T, st Store, name, role string) Agent {
	t.Helper()
	a, err := st.ProvisionAgent(context.Background(), Agent{Name: name, Role: role, Model: "claude-haiku"})
	if err != nil {
		t.Fatalf("ProvisionAgent %s: %v", name, err)
	}
	return a
}

func TestMigrationsAndAgentCRUD(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	a, err := st.ProvisionAgent(ctx, Agent{Name: "forge", Role: "dev", Model: "claude-sonnet", Skills: []string{"dev", "code"}, CostTier: "premium"})
	if err != nil {
		t.Fatalf("ProvisionAgent: %v", err)
	}
	if a.AgentID == "" {
		t.Fatal("expected generated agent_id")
	}

	// Re-provisioning the same name updates config but keeps identity.
	b, err := st.ProvisionAgent(ctx, Agent{Name: "forge", Role: "dev", Model: "claude-opus"})
	if err != nil {
		t.Fatalf("re-provision: %v", err)
	}
	if b.AgentID != a.AgentID {
		t.Errorf("re-provision changed agent_id: %s -> %s", a.AgentID, b.AgentID)
	}
	if b.Model != "claude-opus" {
		t.Errorf("re-provision did not update model: %q", b.Model)
	}

	agents, err := st.ListAgents(ctx)
	if err != nil {
		t.Fatalf("ListAgents: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}

	if _, err := st.GetAgentByName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAgentByName unknown: got %v, want ErrNotFound", err)
	}
	byRole, err := st.GetAgentByRole(ctx, "dev")
	if err != nil {
		t.Fatalf("GetAgentByRole: %v", err)
	}
	if byRole.Name != "forge" {
		t.Errorf("GetAgentByRole: got %q", byRole.Name)
	}
}

func TestTaskLifecycle(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	agent := provisionTestAgent(t, st, "forge", "dev")

	id, err := st.CreateTask(ctx, TaskParams{Title: "fix login", Source: "cli", AssignedTo: &agent.AgentID, Priority: 2, Category: "bug"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	task, err := st.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task == nil || task.Status != StatusPending {
		t.Fatalf("new task: got %+v", task)
	}

	// blocked requires a reason
	if err := st.UpdateTaskStatus(ctx, id, StatusBlocked, ""); err == nil {
		t.Error("blocked without reason: expected error")
	}
	if err := st.UpdateTaskStatus(ctx, id, StatusBlocked, "waiting on creds"); err != nil {
		t.Fatalf("block: %v", err)
	}
	task, _ = st.GetTask(ctx, id)
	if task.BlockedReason == nil || *task.BlockedReason != "waiting on creds" {
		t.Errorf("blocked reason not stored: %+v", task)
	}

	// leaving blocked clears the reason
	if err := st.UpdateTaskStatus(ctx, id, StatusInProgress, ""); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	task, _ = st.GetTask(ctx, id)
	if task.BlockedReason != nil {
		t.Errorf("blocked reason not cleared: %+v", task)
	}

	if err := st.UpdateTaskStatus(ctx, id, StatusCompleted, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	task, _ = st.GetTask(ctx, id)
	if task.CompletedAt == nil {
		t.Error("completed_at not stamped")
	}

	if err := st.UpdateTaskStatus(ctx, 9999, StatusPending, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("update unknown task: got %v, want ErrNotFound", err)
	}
	if err := st.UpdateTaskStatus(ctx, id, "bogus", ""); err == nil {
		t.Error("invalid status: expected error")
	}

	today := time.Now().UTC().Format("2006-01-02")
	done, err := st.TasksCompletedOn(ctx, today)
	if err != nil {
		t.Fatalf("TasksCompletedOn: %v", err)
	}
	if len(done) != 1 {
		t.Errorf("expected 1 completed today, got %d", len(done))
	}
}

func TestCreateTaskIfAbsentDedup(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	p := TaskParams{Title: "Security scan 2026-08-31: high urgency", Source: "security-scan", Priority: 1, Category: "security"}
	id1, created, err := st.CreateTaskIfAbsent(ctx, p)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !created {
		t.Fatal("first insert: expected created=true")
	}

	id2, created, err := st.CreateTaskIfAbsent(ctx, p)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if created {
		t.Error("second insert: expected created=false")
	}
	if id2 != id1 {
		t.Errorf("dedup returned different id: %d != %d", id2, id1)
	}

	// Completing the open task frees the (title, source) pair.
	if err := st.UpdateTaskStatus(ctx, id1, StatusCompleted, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	id3, created, err := st.CreateTaskIfAbsent(ctx, p)
	if err != nil {
		t.Fatalf("insert after complete: %v", err)
	}
	if !created || id3 == id1 {
		t.Errorf("after completion expected a fresh task, got id=%d created=%v", id3, created)
	}
}

func TestNotificationsDeliveredMonotonic(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	agent := provisionTestAgent(t, st, "scout", "research")

	msgID, err := st.CreateMessage(ctx, "general", nil, "eddie", "@scout look into this", []string{"scout"})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	nid, err := st.CreateNotification(ctx, NotificationParams{AgentID: agent.AgentID, Kind: KindMention, SourceKind: SourceMessage, SourceID: msgID})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	pending, err := st.ListPendingNotifications(ctx, "")
	if err != nil {
		t.Fatalf("ListPendingNotifications: %v", err)
	}
	if len(pending) != 1 || pending[0].AgentName != "scout" {
		t.Fatalf("pending: %+v", pending)
	}

	marked, err := st.MarkNotificationDelivered(ctx, nid)
	if err != nil || !marked {
		t.Fatalf("first mark: marked=%v err=%v", marked, err)
	}
	marked, err = st.MarkNotificationDelivered(ctx, nid)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if marked {
		t.Error("second mark: expected false, flag is never reset")
	}

	n, err := st.CountPendingNotifications(ctx)
	if err != nil {
		t.Fatalf("CountPendingNotifications: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 pending after delivery, got %d", n)
	}

	// Notifying a nonexistent agent is an integrity error.
	_, err = st.CreateNotification(ctx, NotificationParams{AgentID: "no-such-agent", Kind: KindMention, SourceKind: SourceMessage, SourceID: msgID})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("notification for unknown agent: got %v, want ErrNotFound", err)
	}
}

func TestPendingNotificationsPriorityFilter(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	agent := provisionTestAgent(t, st, "bolt", "ops")

	for _, prio := range []string{PriorityNormal, PriorityUrgent, PriorityNormal} {
		_, err := st.CreateNotification(ctx, NotificationParams{AgentID: agent.AgentID, Kind: KindMention, SourceKind: SourceMessage, SourceID: 1, Priority: prio})
		if err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	urgent, err := st.ListPendingNotifications(ctx, PriorityUrgent)
	if err != nil {
		t.Fatalf("urgent filter: %v", err)
	}
	if len(urgent) != 1 {
		t.Errorf("expected 1 urgent, got %d", len(urgent))
	}
	all, err := st.ListPendingNotifications(ctx, "")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 pending, got %d", len(all))
	}
}

func TestAgentWorkloads(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	forge := provisionTestAgent(t, st, "forge", "dev")
	provisionTestAgent(t, st, "scout", "research")

	mk := func(title, status string) {
		t.Helper()
		id, err := st.CreateTask(ctx, TaskParams{Title: title, Source: "cli", AssignedTo: &forge.AgentID, Priority: 3})
		if err != nil {
			t.Fatalf("CreateTask %s: %v", title, err)
		}
		if status != StatusPending {
			reason := ""
			if status == StatusBlocked {
				reason = "stuck"
			}
			if err := st.UpdateTaskStatus(ctx, id, status, reason); err != nil {
				t.Fatalf("UpdateTaskStatus %s: %v", title, err)
			}
		}
	}
	mk("t1", StatusPending)
	mk("t2", StatusPending)
	mk("t3", StatusPending)
	mk("t4", StatusInProgress)
	mk("t5", StatusCompleted)
	mk("t6", StatusCompleted)

	today := time.Now().UTC().Format("2006-01-02")
	w, err := st.AgentWorkload(ctx, "forge", today)
	if err != nil {
		t.Fatalf("AgentWorkload: %v", err)
	}
	if w.Pending != 3 || w.InProgress != 1 || w.CompletedToday != 2 {
		t.Errorf("workload: %+v", w)
	}

	all, err := st.AgentWorkloads(ctx, today)
	if err != nil {
		t.Fatalf("AgentWorkloads: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 workload rows, got %d", len(all))
	}

	if _, err := st.AgentWorkload(ctx, "nobody", today); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown agent workload: got %v, want ErrNotFound", err)
	}
	if _, err := st.AgentWorkload(ctx, "forge", "not-a-date"); err == nil {
		t.Error("invalid date: expected error")
	}
}

func TestStandupUpsert(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	s := Standup{Date: "2026-08-31", CompletedCount: 2, Highlight: "first"}
	if err := st.UpsertStandup(ctx, s); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	s.CompletedCount = 5
	s.Highlight = "second"
	if err := st.UpsertStandup(ctx, s); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := st.GetStandup(ctx, "2026-08-31", "")
	if err != nil {
		t.Fatalf("GetStandup: %v", err)
	}
	if got == nil {
		t.Fatal("standup missing")
	}
	if got.CompletedCount != 5 || got.Highlight != "second" {
		t.Errorf("upsert did not replace contents: %+v", got)
	}

	// Agent-scoped standup is a separate row.
	if err := st.UpsertStandup(ctx, Standup{Date: "2026-08-31", AgentScope: "forge", CompletedCount: 1}); err != nil {
		t.Fatalf("scoped upsert: %v", err)
	}
	scoped, err := st.GetStandup(ctx, "2026-08-31", "forge")
	if err != nil || scoped == nil {
		t.Fatalf("scoped standup: %+v err=%v", scoped, err)
	}
	if scoped.CompletedCount != 1 {
		t.Errorf("scoped standup: %+v", scoped)
	}

	missing, err := st.GetStandup(ctx, "1999-01-01", "")
	if err != nil || missing != nil {
		t.Errorf("missing standup: got %+v err=%v", missing, err)
	}
}

func TestActivityLog(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()
	agent := provisionTestAgent(t, st, "hydra", "coordinator")

	if err := st.AppendActivity(ctx, nil, "setup provisioned 4 agent(s)"); err != nil {
		t.Fatalf("AppendActivity: %v", err)
	}
	if err := st.AppendActivity(ctx, &agent.AgentID, "compiled standup"); err != nil {
		t.Fatalf("AppendActivity with agent: %v", err)
	}
	if err := st.AppendActivity(ctx, nil, ""); err == nil {
		t.Error("empty description: expected error")
	}

	entries, err := st.ListActivity(ctx, 10)
	if err != nil {
		t.Fatalf("ListActivity: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Description != "compiled standup" {
		t.Errorf("order: %+v", entries)
	}
}
