package repository

import (
	"context"
	"sync"

	"simpletodos/internal/model"
	"simpletodos/pkg/rbac"
)

// MemoryStore keeps tasks and users in process. It serves the "memory"
// storage driver and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tasks   []*model.Task // newest first
	users   map[string]*model.User
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) List(_ context.Context) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return s.tasks[i].Clone(), nil
}

func (s *MemoryStore) Insert(_ context.Context, t *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append([]*model.Task{t.Clone()}, s.tasks...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id, callerID string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if !allowed(callerID, rbac.PermissionDeleteTask, s.tasks[i]) {
		return nil, ErrForbidden
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return t.Clone(), nil
}

func (s *MemoryStore) SetChecked(_ context.Context, id, callerID string, checked bool) (*model.Task, error) {
	return s.update(id, callerID, rbac.PermissionCheckTask, func(t *model.Task) { t.Checked = checked })
}

func (s *MemoryStore) SetPrivate(_ context.Context, id, callerID string, private bool) (*model.Task, error) {
	return s.update(id, callerID, rbac.PermissionSetPrivate, func(t *model.Task) { t.Private = private })
}

func (s *MemoryStore) CountIncomplete(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.tasks {
		if !t.Checked {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// update applies fn under the write lock once callerID holds permission on
// the task as it is at that moment.
func (s *MemoryStore) update(id, callerID, permission string, fn func(*model.Task)) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	if !allowed(callerID, permission, s.tasks[i]) {
		return nil, ErrForbidden
	}
	fn(s.tasks[i])
	return s.tasks[i].Clone(), nil
}

func allowed(callerID, permission string, t *model.Task) bool {
	return rbac.HasPermission(callerID, permission, rbac.Resource{ID: t.ID, Owner: t.Owner, Private: t.Private})
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range u.Emails {
		if _, taken := s.byEmail[e.Address]; taken {
			return ErrEmailTaken
		}
	}
	s.users[u.ID] = u.Clone()
	for _, e := range u.Emails {
		s.byEmail[e.Address] = u.ID
	}
	return nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, address string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[address]
	if !ok {
		return nil, ErrNotFound
	}
	return s.users[id].Clone(), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}
