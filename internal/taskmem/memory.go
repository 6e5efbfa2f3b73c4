package taskmem

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// CreateMemory assigns a uuid if absent and rejects an unknown,
// unregistered category.
func (s *Store) CreateMemory(m Memory) (Memory, error) {
	s.memMu.Lock()
	defer s.memMu.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if !s.categories[m.Category] {
		return Memory{}, voiderr.New(voiderr.InvalidArgument, fmt.Sprintf("unknown memory category: %s", m.Category))
	}
	now := time.Now()
	m.CreatedAt = now
	m.LastAccessed = now

	s.memories[m.ID] = m
	if err := s.flushMemoriesLocked(); err != nil {
		delete(s.memories, m.ID)
		return Memory{}, fmt.Errorf("persist memory: %w", err)
	}
	return m, nil
}

// SearchMemories matches query as a substring of title/content, or a tag,
// optionally narrowed to one category.
func (s *Store) SearchMemories(query, category string) []Memory {
	s.memMu.Lock()
	defer s.memMu.Unlock()

	q := strings.ToLower(query)
	var out []Memory
	for id, m := range s.memories {
		if category != "" && m.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) &&
			!strings.Contains(strings.ToLower(m.Content), q) &&
			!containsTag(m.Tags, q) {
			continue
		}
		m.LastAccessed = time.Now()
		s.memories[id] = m
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance > out[j].Importance
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	_ = s.flushMemoriesLocked() // best-effort: LastAccessed bump is not crash-critical
	return out
}

// GetMemory fetches a memory by id without touching LastAccessed.
func (s *Store) GetMemory(id string) (Memory, error) {
	s.memMu.RLock()
	defer s.memMu.RUnlock()
	m, ok := s.memories[id]
	if !ok {
		return Memory{}, voiderr.New(voiderr.NotFound, "memory not found")
	}
	return m, nil
}

func containsTag(tags []string, q string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// ListCategories returns the hardcoded defaults unioned with dynamically
// registered categories.
func (s *Store) ListCategories() []string {
	s.memMu.RLock()
	defer s.memMu.RUnlock()
	out := make([]string, 0, len(s.categories))
	for c := range s.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// RegisterCategory adds a new memory category, persisted alongside the
// memory document.
func (s *Store) RegisterCategory(name string) error {
	s.memMu.Lock()
	defer s.memMu.Unlock()
	if s.categories[name] {
		return nil
	}
	s.categories[name] = true
	if err := s.flushCategoriesLocked(); err != nil {
		delete(s.categories, name)
		return fmt.Errorf("persist category: %w", err)
	}
	return nil
}

// ---- Project operations ----

// CreateProject assigns a uuid if absent.
func (s *Store) CreateProject(p Project) (Project, error) {
	s.projMu.Lock()
	defer s.projMu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.projects[p.ID] = p
	if err := s.flushProjectsLocked(); err != nil {
		delete(s.projects, p.ID)
		return Project{}, fmt.Errorf("persist project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects.
func (s *Store) ListProjects() []Project {
	s.projMu.RLock()
	defer s.projMu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// GetProject fetches a project by id.
func (s *Store) GetProject(id string) (Project, error) {
	s.projMu.RLock()
	defer s.projMu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return Project{}, voiderr.New(voiderr.NotFound, "project not found")
	}
	return p, nil
}

// DeleteProject removes a project by id.
func (s *Store) DeleteProject(id string) error {
	s.projMu.Lock()
	defer s.projMu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return voiderr.New(voiderr.NotFound, "project not found")
	}
	snapshot := s.projects[id]
	delete(s.projects, id)
	if err := s.flushProjectsLocked(); err != nil {
		s.projects[id] = snapshot
		return fmt.Errorf("persist project deletion: %w", err)
	}
	return nil
}
