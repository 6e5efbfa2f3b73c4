package taskmem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// document is the on-disk, write-through JSON envelope for one entity set.
type document[T any] struct {
	Version int          `json:"version"`
	Items   map[string]T `json:"items"`
}

// Store owns the Task, Memory, and Project collections and serializes
// writes to each entity set through its own lock and file.
type Store struct {
	dataDir string

	taskMu   sync.RWMutex
	tasks    map[string]Task

	memMu      sync.RWMutex
	memories   map[string]Memory
	categories map[string]bool

	projMu   sync.RWMutex
	projects map[string]Project
}

// Open loads (or initializes) the store's JSON documents from dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		dataDir:    dataDir,
		tasks:      make(map[string]Task),
		memories:   make(map[string]Memory),
		categories: make(map[string]bool),
		projects:   make(map[string]Project),
	}
	for _, c := range defaultCategories {
		s.categories[c] = true
	}

	if err := loadDocument(filepath.Join(dataDir, "tasks.json"), &s.tasks); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if err := loadDocument(filepath.Join(dataDir, "memories.json"), &s.memories); err != nil {
		return nil, fmt.Errorf("load memories: %w", err)
	}
	if err := loadDocument(filepath.Join(dataDir, "projects.json"), &s.projects); err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	var registered []string
	if err := loadCategoryList(filepath.Join(dataDir, "categories.json"), &registered); err == nil {
		for _, c := range registered {
			s.categories[c] = true
		}
	}
	return s, nil
}

func loadDocument[T any](path string, out *map[string]T) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var doc document[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("corrupt document %s: %w", path, err)
	}
	if doc.Items != nil {
		*out = doc.Items
	}
	return nil
}

func loadCategoryList(path string, out *[]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// writeAtomic serializes v to a temp file in dir and renames it into place,
// guaranteeing a reader never observes a torn write.
func writeAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s *Store) tasksPath() string    { return filepath.Join(s.dataDir, "tasks.json") }
func (s *Store) memoriesPath() string { return filepath.Join(s.dataDir, "memories.json") }
func (s *Store) projectsPath() string { return filepath.Join(s.dataDir, "projects.json") }
func (s *Store) categoriesPath() string { return filepath.Join(s.dataDir, "categories.json") }

// flushTasksLocked persists s.tasks; caller must hold s.taskMu (any mode,
// since writeAtomic only reads the caller-supplied snapshot).
func (s *Store) flushTasksLocked() error {
	return writeAtomic(s.tasksPath(), document[Task]{Version: 1, Items: s.tasks})
}

func (s *Store) flushMemoriesLocked() error {
	return writeAtomic(s.memoriesPath(), document[Memory]{Version: 1, Items: s.memories})
}

func (s *Store) flushProjectsLocked() error {
	return writeAtomic(s.projectsPath(), document[Project]{Version: 1, Items: s.projects})
}

func (s *Store) flushCategoriesLocked() error {
	list := make([]string, 0, len(s.categories))
	for c := range s.categories {
		list = append(list, c)
	}
	sort.Strings(list)
	return writeAtomic(s.categoriesPath(), list)
}

// ---- Task operations ----

// CreateTask assigns a uuid if absent and rejects cycles.
func (s *Store) CreateTask(t Task) (Task, error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	} else if _, exists := s.tasks[t.ID]; exists {
		return Task{}, voiderr.New(voiderr.Conflict, "task id already exists").WithReason(voiderr.ReasonDuplicateID)
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = StatusPending
	}

	if t.ParentID != "" {
		if _, ok := s.tasks[t.ParentID]; !ok {
			return Task{}, voiderr.New(voiderr.NotFound, "parent task not found")
		}
	}

	candidate := s.tasks
	trial := make(map[string]Task, len(candidate)+1)
	for k, v := range candidate {
		trial[k] = v
	}
	trial[t.ID] = t
	if hasCycle(trial, t.ID) {
		return Task{}, voiderr.New(voiderr.Conflict, "task creation would introduce a cycle").WithReason(voiderr.ReasonCycle)
	}

	s.tasks[t.ID] = t
	if err := s.flushTasksLocked(); err != nil {
		delete(s.tasks, t.ID)
		return Task{}, fmt.Errorf("persist task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a partial update. A completed -> pending transition
// requires force.
func (s *Store) UpdateTask(id string, delta func(*Task), force bool) (Task, error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, voiderr.New(voiderr.NotFound, "task not found")
	}
	before := t
	delta(&t)
	if before.Status == StatusCompleted && t.Status == StatusPending && !force {
		return Task{}, voiderr.New(voiderr.InvalidArgument, "completed -> pending requires force=true")
	}
	t.ID = id
	t.UpdatedAt = time.Now()

	s.tasks[id] = t
	if err := s.flushTasksLocked(); err != nil {
		s.tasks[id] = before
		return Task{}, fmt.Errorf("persist task: %w", err)
	}
	return t, nil
}

// MoveTask reparents a task, rejecting cycles.
func (s *Store) MoveTask(id, newParentID string) (Task, error) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, voiderr.New(voiderr.NotFound, "task not found")
	}
	if newParentID != "" {
		if _, ok := s.tasks[newParentID]; !ok {
			return Task{}, voiderr.New(voiderr.NotFound, "new parent not found")
		}
	}

	trial := make(map[string]Task, len(s.tasks))
	for k, v := range s.tasks {
		trial[k] = v
	}
	moved := t
	moved.ParentID = newParentID
	trial[id] = moved
	if hasCycle(trial, id) {
		return Task{}, voiderr.New(voiderr.Conflict, "move would introduce a cycle").WithReason(voiderr.ReasonCycle)
	}

	moved.UpdatedAt = time.Now()
	s.tasks[id] = moved
	if err := s.flushTasksLocked(); err != nil {
		s.tasks[id] = t
		return Task{}, fmt.Errorf("persist task: %w", err)
	}
	return moved, nil
}

// DeleteTask removes a task. Non-cascade rejects if children exist.
func (s *Store) DeleteTask(id string, cascade bool) error {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return voiderr.New(voiderr.NotFound, "task not found")
	}

	children := childrenOf(s.tasks, id)
	if len(children) > 0 && !cascade {
		return voiderr.New(voiderr.Conflict, "task has children").WithReason(voiderr.ReasonHasChildren)
	}

	snapshot := make(map[string]Task, len(s.tasks))
	for k, v := range s.tasks {
		snapshot[k] = v
	}

	toDelete := map[string]bool{id: true}
	if cascade {
		for _, cid := range descendantsOf(s.tasks, id) {
			toDelete[cid] = true
		}
	}
	for did := range toDelete {
		delete(s.tasks, did)
	}

	if err := s.flushTasksLocked(); err != nil {
		s.tasks = snapshot
		return fmt.Errorf("persist task deletion: %w", err)
	}
	return nil
}

// GetTask fetches a task by id.
func (s *Store) GetTask(id string) (Task, error) {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, voiderr.New(voiderr.NotFound, "task not found")
	}
	return t, nil
}

// ListTasks returns tasks matching filter, ordered by priority desc then
// createdAt asc.
func (s *Store) ListTasks(filter TaskFilter) []Task {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.MinPriority > 0 && t.Priority < filter.MinPriority {
			continue
		}
		if filter.MaxPriority > 0 && t.Priority > filter.MaxPriority {
			continue
		}
		if filter.FreeText != "" && !matchesFreeText(t, filter.FreeText) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAllTags(t.Tags, filter.Tags) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Stats returns aggregate counts over the task set.
func (s *Store) Stats() Stats {
	s.taskMu.RLock()
	defer s.taskMu.RUnlock()

	stats := Stats{ByStatus: make(map[Status]int)}
	stats.Total = len(s.tasks)

	var completedWithHours int
	var totalHours float64
	for _, t := range s.tasks {
		stats.ByStatus[t.Status]++
		if t.Status == StatusCompleted && t.ActualHours > 0 {
			completedWithHours++
			totalHours += t.ActualHours
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[StatusCompleted]) / float64(stats.Total)
	}
	if completedWithHours > 0 {
		stats.AvgCompletionHours = totalHours / float64(completedWithHours)
	}
	return stats
}

func matchesFreeText(t Task, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q)
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

func childrenOf(tasks map[string]Task, id string) []string {
	var out []string
	for tid, t := range tasks {
		if t.ParentID == id {
			out = append(out, tid)
		}
	}
	return out
}

func descendantsOf(tasks map[string]Task, id string) []string {
	var out []string
	queue := childrenOf(tasks, id)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		out = append(out, cur)
		queue = append(queue, childrenOf(tasks, cur)...)
	}
	return out
}

// hasCycle walks the parent chain of start and reports whether it revisits
// start, i.e. whether start would become its own ancestor.
func hasCycle(tasks map[string]Task, start string) bool {
	visited := make(map[string]bool)
	cur := start
	for {
		t, ok := tasks[cur]
		if !ok || t.ParentID == "" {
			return false
		}
		if t.ParentID == start {
			return true
		}
		if visited[t.ParentID] {
			return true
		}
		visited[t.ParentID] = true
		cur = t.ParentID
	}
}
