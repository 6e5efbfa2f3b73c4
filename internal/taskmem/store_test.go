package taskmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestStore_CreateListDeleteTask(t *testing.T) {
	s := openStore(t)

	created, err := s.CreateTask(Task{Name: "write spec"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	listed := s.ListTasks(TaskFilter{})
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	require.NoError(t, s.DeleteTask(created.ID, false))
	assert.Empty(t, s.ListTasks(TaskFilter{}))

	err = s.DeleteTask(created.ID, false)
	require.Error(t, err)
	assert.Equal(t, voiderr.NotFound, voiderr.KindOf(err))
}

func TestStore_MoveTaskRejectsCycle(t *testing.T) {
	s := openStore(t)

	a, err := s.CreateTask(Task{Name: "A"})
	require.NoError(t, err)
	b, err := s.CreateTask(Task{Name: "B", ParentID: a.ID})
	require.NoError(t, err)

	_, err = s.MoveTask(a.ID, b.ID)
	require.Error(t, err)
	assert.Equal(t, voiderr.Conflict, voiderr.KindOf(err))
	assert.Equal(t, voiderr.ReasonCycle, voiderr.ReasonOf(err))
}

func TestStore_DeleteRejectsChildrenWithoutCascade(t *testing.T) {
	s := openStore(t)
	a, err := s.CreateTask(Task{Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateTask(Task{Name: "B", ParentID: a.ID})
	require.NoError(t, err)

	err = s.DeleteTask(a.ID, false)
	require.Error(t, err)
	assert.Equal(t, voiderr.ReasonHasChildren, voiderr.ReasonOf(err))

	require.NoError(t, s.DeleteTask(a.ID, true))
	assert.Empty(t, s.ListTasks(TaskFilter{}))
}

func TestStore_CompletedToPendingRequiresForce(t *testing.T) {
	s := openStore(t)
	task, err := s.CreateTask(Task{Name: "A", Status: StatusCompleted})
	require.NoError(t, err)

	_, err = s.UpdateTask(task.ID, func(t *Task) { t.Status = StatusPending }, false)
	require.Error(t, err)

	_, err = s.UpdateTask(task.ID, func(t *Task) { t.Status = StatusPending }, true)
	require.NoError(t, err)
}

func TestStore_ListTasksOrdersByPriorityThenCreatedAt(t *testing.T) {
	s := openStore(t)
	_, err := s.CreateTask(Task{Name: "low", Priority: 1})
	require.NoError(t, err)
	_, err = s.CreateTask(Task{Name: "high", Priority: 9})
	require.NoError(t, err)

	out := s.ListTasks(TaskFilter{})
	require.Len(t, out, 2)
	assert.Equal(t, "high", out[0].Name)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.CreateTask(Task{Name: "persisted"})
	require.NoError(t, err)

	reopened, err := Open(dir)
	require.NoError(t, err)
	out := reopened.ListTasks(TaskFilter{})
	require.Len(t, out, 1)
	assert.Equal(t, "persisted", out[0].Name)
}

func TestStore_MemoryRejectsUnknownCategory(t *testing.T) {
	s := openStore(t)
	_, err := s.CreateMemory(Memory{Title: "x", Content: "y", Category: "not-a-category"})
	require.Error(t, err)
	assert.Equal(t, voiderr.InvalidArgument, voiderr.KindOf(err))
}

func TestStore_RegisterCategoryThenCreateMemory(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.RegisterCategory("incident"))
	assert.Contains(t, s.ListCategories(), "incident")

	m, err := s.CreateMemory(Memory{Title: "outage", Content: "db down", Category: "incident"})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)

	found := s.SearchMemories("db", "")
	require.Len(t, found, 1)
	assert.Equal(t, m.ID, found[0].ID)
}

func TestStore_StatsComputesCompletionRate(t *testing.T) {
	s := openStore(t)
	_, err := s.CreateTask(Task{Name: "a", Status: StatusCompleted, ActualHours: 2})
	require.NoError(t, err)
	_, err = s.CreateTask(Task{Name: "b", Status: StatusPending})
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.InDelta(t, 0.5, stats.CompletionRate, 0.001)
	assert.InDelta(t, 2.0, stats.AvgCompletionHours, 0.001)
}
