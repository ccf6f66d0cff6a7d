package persistence

import (
	"context"
	"planboard/domain"
	"sort"
	"strings"
	"sync"

	"github.com/fundwit/go-commons/types"
)

// MemoryStore keeps entities in process memory. Each instance is independent, so tests and
// demo deployments construct their own. Transactions work on a copy of the state which
// replaces the current state only when the callback succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	projects   map[types.ID]domain.Project
	stages     map[types.ID]domain.Stage
	activities map[types.ID]domain.Activity
	users      map[types.ID]domain.User
	areas      map[types.ID]domain.Area
	tags       map[types.ID]domain.Tag
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

func newMemState() *memState {
	return &memState{
		projects:   map[types.ID]domain.Project{},
		stages:     map[types.ID]domain.Stage{},
		activities: map[types.ID]domain.Activity{},
		users:      map[types.ID]domain.User{},
		areas:      map[types.ID]domain.Area{},
		tags:       map[types.ID]domain.Tag{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.projects {
		c.projects[k] = copyProject(v)
	}
	for k, v := range s.stages {
		c.stages[k] = v
	}
	for k, v := range s.activities {
		c.activities[k] = copyActivity(v)
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.areas {
		c.areas[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	return c
}

func (m *MemoryStore) Repositories(ctx context.Context) Repositories {
	return &memRepos{state: func() *memState { return m.state }, lock: m.mu.RLocker()}
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.state.clone()
	if err := fn(&memRepos{state: func() *memState { return working }, lock: noopLocker{}}); err != nil {
		return err
	}
	m.state = working
	return nil
}

// ReadTransaction holds the read lock for the whole callback so no transaction commits in between.
func (m *MemoryStore) ReadTransaction(ctx context.Context, fn func(tx Repositories) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state := m.state
	return fn(&memRepos{state: func() *memState { return state }, lock: noopLocker{}})
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

type memRepos struct {
	state func() *memState
	lock  sync.Locker
}

func copyProject(p domain.Project) domain.Project {
	if p.Team != nil {
		p.Team = append([]types.ID{}, p.Team...)
	}
	return p
}

func copyActivity(a domain.Activity) domain.Activity {
	if a.Checklist != nil {
		a.Checklist = append([]domain.ChecklistItem{}, a.Checklist...)
	}
	return a
}

func (r *memRepos) GetProject(id types.ID) (*domain.Project, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	p, found := r.state().projects[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	p = copyProject(p)
	return &p, nil
}

func (r *memRepos) SaveProject(p *domain.Project) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().projects[p.ID] = copyProject(*p)
	return nil
}

func (r *memRepos) DeleteProject(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().projects, id)
	return nil
}

func (r *memRepos) ListProjects(q *domain.ProjectQuery) ([]domain.Project, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.Project{}
	for _, p := range r.state().projects {
		if MatchProject(&p, q) {
			result = append(result, copyProject(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MatchProject applies the project query filters.
func MatchProject(p *domain.Project, q *domain.ProjectQuery) bool {
	if q == nil {
		return !p.Archived
	}
	if q.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Name)) {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
		return false
	}
	if q.MemberID != 0 && !p.HasMember(q.MemberID) {
		return false
	}
	switch q.Archived {
	case domain.ArchiveStateAll:
		return true
	case domain.ArchiveStateOn:
		return p.Archived
	default:
		return !p.Archived
	}
}

func (r *memRepos) GetStage(id types.ID) (*domain.Stage, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	s, found := r.state().stages[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memRepos) SaveStage(s *domain.Stage) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().stages[s.ID] = *s
	return nil
}

func (r *memRepos) DeleteStage(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().stages, id)
	return nil
}

func (r *memRepos) ListStages(projectID types.ID) ([]domain.Stage, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.Stage{}
	for _, s := range r.state().stages {
		if s.ProjectID == projectID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *memRepos) GetActivity(id types.ID) (*domain.Activity, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	a, found := r.state().activities[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	a = copyActivity(a)
	return &a, nil
}

func (r *memRepos) SaveActivity(a *domain.Activity) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().activities[a.ID] = copyActivity(*a)
	return nil
}

func (r *memRepos) DeleteActivity(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().activities, id)
	return nil
}

func (r *memRepos) ListActivities(stageID types.ID) ([]domain.Activity, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.Activity{}
	for _, a := range r.state().activities {
		if a.StageID == stageID {
			result = append(result, copyActivity(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].CreateTime.Time(), result[j].CreateTime.Time()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *memRepos) GetUser(id types.ID) (*domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	u, found := r.state().users[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memRepos) FindUserByEmail(email string) (*domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, u := range r.state().users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRepos) SaveUser(u *domain.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().users[u.ID] = *u
	return nil
}

func (r *memRepos) DeleteUser(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().users, id)
	return nil
}

func (r *memRepos) ListUsers() ([]domain.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.User{}
	for _, u := range r.state().users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memRepos) GetArea(id types.ID) (*domain.Area, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	a, found := r.state().areas[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *memRepos) FindAreaByName(name string) (*domain.Area, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, a := range r.state().areas {
		if strings.EqualFold(a.Name, name) {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRepos) SaveArea(a *domain.Area) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().areas[a.ID] = *a
	return nil
}

func (r *memRepos) DeleteArea(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().areas, id)
	return nil
}

func (r *memRepos) ListAreas() ([]domain.Area, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.Area{}
	for _, a := range r.state().areas {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *memRepos) GetTag(id types.ID) (*domain.Tag, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	t, found := r.state().tags[id]
	if !found {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *memRepos) FindTagByName(name string) (*domain.Tag, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range r.state().tags {
		if strings.EqualFold(t.Name, name) {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRepos) SaveTag(t *domain.Tag) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state().tags[t.ID] = *t
	return nil
}

func (r *memRepos) DeleteTag(id types.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.state().tags, id)
	return nil
}

func (r *memRepos) ListTags() ([]domain.Tag, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := []domain.Tag{}
	for _, t := range r.state().tags {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
