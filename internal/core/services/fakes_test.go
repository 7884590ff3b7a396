package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dealdesk/backend/internal/domain"
)

// fakeChat scripts one chat backend; it records every prompt it receives.
type fakeChat struct {
	mu         sync.Mutex
	configured bool
	reply      string
	err        error
	systemSeen []string
	userSeen   []string
}

func newFakeChat(reply string) *fakeChat {
	return &fakeChat{configured: true, reply: reply}
}

func (f *fakeChat) Configured() bool { return f.configured }

func (f *fakeChat) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systemSeen = append(f.systemSeen, systemPrompt)
	f.userSeen = append(f.userSeen, userPrompt)
	if !f.configured {
		return "", errors.New("chat backend not configured")
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) lastUserPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.userSeen) == 0 {
		return ""
	}
	return f.userSeen[len(f.userSeen)-1]
}

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.userSeen)
}

// fakeSearch returns canned results per query and records queries asked.
type fakeSearch struct {
	mu      sync.Mutex
	results map[string][]domain.SearchResult
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	results := f.results[query]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// fakeCrawler maps URL → page.
type fakeCrawler struct {
	pages map[string]domain.CrawledPage
}

func (f *fakeCrawler) Crawl(_ context.Context, url string) domain.CrawledPage {
	if page, ok := f.pages[url]; ok {
		return page
	}
	return domain.CrawledPage{Err: "no such page"}
}

// fakeTaskRepo is an in-memory ResearchTaskRepository with the same
// semantics the gorm repository has: terminal statuses are final and
// sections come back ordered by position.
type fakeTaskRepo struct {
	mu       sync.Mutex
	tasks    map[string]*domain.ResearchTask
	sections map[string][]domain.ResearchSection
	sources  map[string][]domain.ResearchSource
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{
		tasks:    make(map[string]*domain.ResearchTask),
		sections: make(map[string][]domain.ResearchSection),
		sources:  make(map[string][]domain.ResearchSource),
	}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.ResearchTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.ResearchTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := *task
	cp.Sections = append([]domain.ResearchSection(nil), r.sections[id]...)
	sort.Slice(cp.Sections, func(i, j int) bool { return cp.Sections[i].Position < cp.Sections[j].Position })
	cp.Sources = append([]domain.ResearchSource(nil), r.sources[id]...)
	return &cp, nil
}

func (r *fakeTaskRepo) GetAll(_ context.Context) ([]domain.ResearchTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ResearchTask
	for id, task := range r.tasks {
		cp := *task
		cp.Sections = append([]domain.ResearchSection(nil), r.sections[id]...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id string, status domain.TaskStatus, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return errors.New("record not found")
	}
	if task.Status.Terminal() {
		return errors.New("record not found")
	}
	task.Status = status
	if failureReason != "" {
		task.FailureReason = failureReason
	}
	task.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTaskRepo) AppendSection(_ context.Context, section *domain.ResearchSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[section.TaskID]; !ok {
		return errors.New("record not found")
	}
	section.CreatedAt = time.Now()
	r.sections[section.TaskID] = append(r.sections[section.TaskID], *section)
	r.tasks[section.TaskID].UpdatedAt = time.Now()
	return nil
}

func (r *fakeTaskRepo) AppendSources(_ context.Context, taskID string, sources []domain.ResearchSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[taskID] = append(r.sources[taskID], sources...)
	return nil
}

func (r *fakeTaskRepo) ListStale(_ context.Context, cutoff time.Time) ([]domain.ResearchTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ResearchTask
	for id, task := range r.tasks {
		if task.Status.Terminal() || !task.UpdatedAt.Before(cutoff) {
			continue
		}
		cp := *task
		cp.Sections = append([]domain.ResearchSection(nil), r.sections[id]...)
		out = append(out, cp)
	}
	return out, nil
}

// setUpdatedAt backdates a task so sweeper tests can age it.
func (r *fakeTaskRepo) setUpdatedAt(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task, ok := r.tasks[id]; ok {
		task.UpdatedAt = at
	}
}
