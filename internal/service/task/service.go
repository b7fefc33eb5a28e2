// Package task implements the to-do operations exposed by the GraphQL
// schema: listing, counting, adding, deleting and toggling tasks.
//
// Every write requires a signed-in caller. Deleting and changing privacy are
// owner-only. Checking is open to any signed-in user unless the task is
// private. Setting a flag to its current value is a no-op that returns the
// unchanged task.
package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "simpletodos/contracts/mq"
	"simpletodos/internal/apperr"
	"simpletodos/internal/events"
	"simpletodos/internal/model"
	"simpletodos/internal/repository"
	"simpletodos/pkg/logger"
	"simpletodos/pkg/metrics"
	"simpletodos/pkg/rbac"
)

type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Insert(ctx context.Context, t *model.Task) error
	// The writes below re-check the caller's permission in the same step
	// that changes the row and fail with repository.ErrForbidden.
	Delete(ctx context.Context, id, callerID string) (*model.Task, error)
	SetChecked(ctx context.Context, id, callerID string, checked bool) (*model.Task, error)
	SetPrivate(ctx context.Context, id, callerID string, private bool) (*model.Task, error)
	CountIncomplete(ctx context.Context) (int, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// CountCache caches IncompleteCount between mutations. Fill only stores a
// recount when no Invalidate happened since the Get that returned gen.
type CountCache interface {
	Get(ctx context.Context) (n int, ok bool, gen int64, err error)
	Fill(ctx context.Context, gen int64, n int) (bool, error)
	Invalidate(ctx context.Context) error
}

type Service struct {
	tasks  TaskStore
	users  UserStore
	counts CountCache
	events events.Publisher
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires the task operations. counts and pub may be nil.
func NewService(tasks TaskStore, users UserStore, counts CountCache, pub events.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		tasks:  tasks,
		users:  users,
		counts: counts,
		events: pub,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns all tasks, newest first.
func (s *Service) List(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// IncompleteCount returns the number of tasks with checked == false.
func (s *Service) IncompleteCount(ctx context.Context) (int, error) {
	var (
		gen     int64
		canFill bool
	)
	if s.counts != nil {
		n, ok, g, err := s.counts.Get(ctx)
		switch {
		case err != nil:
			metrics.IncrementIncompleteCountCache("error")
			logger.WithTrace(ctx, s.logger).Warn("Incomplete count cache read failed", zap.Error(err))
		case ok:
			metrics.IncrementIncompleteCountCache("hit")
			return n, nil
		default:
			metrics.IncrementIncompleteCountCache("miss")
			gen, canFill = g, true
		}
	}

	n, err := s.tasks.CountIncomplete(ctx)
	if err != nil {
		return 0, fmt.Errorf("count incomplete: %w", err)
	}

	if canFill {
		stored, err := s.counts.Fill(ctx, gen, n)
		switch {
		case err != nil:
			logger.WithTrace(ctx, s.logger).Warn("Incomplete count cache write failed", zap.Error(err))
		case !stored:
			metrics.IncrementIncompleteCountCache("stale")
		}
	}
	return n, nil
}

// AddTask creates a task owned by callerID.
func (s *Service) AddTask(ctx context.Context, callerID, text string) (t *model.Task, err error) {
	defer func() { metrics.IncrementTaskMutation("addTask", apperr.MetricLabel(err)) }()

	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, apperr.Validation("task text must not be empty")
	}

	// timestamptz keeps microseconds
	createdAt := s.now().UTC().Truncate(time.Microsecond)
	t = &model.Task{
		ID:        s.newID(),
		Text:      text,
		Email:     caller.PrimaryEmail(),
		Owner:     caller.ID,
		CreatedAt: createdAt,
	}
	if err := s.tasks.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}

	s.invalidateCount(ctx)
	s.events.TaskEvent(ctx, mqcontracts.RoutingTaskAdded, caller.ID, t)
	logger.WithTrace(ctx, s.logger).Info("Task added",
		zap.String("task_id", t.ID),
		zap.String("owner", t.Owner),
	)
	return t, nil
}

// DeleteTask removes the task and returns its state before deletion.
func (s *Service) DeleteTask(ctx context.Context, callerID, id string) (t *model.Task, err error) {
	defer func() { metrics.IncrementTaskMutation("deleteTask", apperr.MetricLabel(err)) }()

	if _, err = s.authorize(ctx, callerID, id, rbac.PermissionDeleteTask); err != nil {
		return nil, err
	}

	t, err = s.tasks.Delete(ctx, id, callerID)
	if err != nil {
		return nil, s.storeErr(id, err)
	}

	s.invalidateCount(ctx)
	s.events.TaskEvent(ctx, mqcontracts.RoutingTaskDeleted, callerID, t)
	logger.WithTrace(ctx, s.logger).Info("Task deleted", zap.String("task_id", id))
	return t, nil
}

// SetChecked sets the task's checked flag.
func (s *Service) SetChecked(ctx context.Context, callerID, id string, checked bool) (t *model.Task, err error) {
	defer func() { metrics.IncrementTaskMutation("setChecked", apperr.MetricLabel(err)) }()

	t, err = s.authorize(ctx, callerID, id, rbac.PermissionCheckTask)
	if err != nil {
		return nil, err
	}
	if t.Checked == checked {
		return t, nil
	}

	t, err = s.tasks.SetChecked(ctx, id, callerID, checked)
	if err != nil {
		return nil, s.storeErr(id, err)
	}

	s.invalidateCount(ctx)
	s.events.TaskEvent(ctx, mqcontracts.RoutingTaskChecked, callerID, t)
	return t, nil
}

// SetPrivate sets the task's private flag. Owner only.
func (s *Service) SetPrivate(ctx context.Context, callerID, id string, private bool) (t *model.Task, err error) {
	defer func() { metrics.IncrementTaskMutation("setPrivate", apperr.MetricLabel(err)) }()

	t, err = s.authorize(ctx, callerID, id, rbac.PermissionSetPrivate)
	if err != nil {
		return nil, err
	}
	if t.Private == private {
		return t, nil
	}

	t, err = s.tasks.SetPrivate(ctx, id, callerID, private)
	if err != nil {
		return nil, s.storeErr(id, err)
	}

	s.events.TaskEvent(ctx, mqcontracts.RoutingTaskPrivacyChanged, callerID, t)
	return t, nil
}

func (s *Service) caller(ctx context.Context, callerID string) (*model.User, error) {
	if callerID == "" {
		return nil, apperr.Auth("sign in required")
	}
	u, err := s.users.FindByID(ctx, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Auth("unknown user")
	}
	if err != nil {
		return nil, fmt.Errorf("load caller: %w", err)
	}
	return u, nil
}

// authorize loads the task and checks permission for callerID.
func (s *Service) authorize(ctx context.Context, callerID, id, permission string) (*model.Task, error) {
	if callerID == "" {
		return nil, apperr.Auth("sign in required")
	}

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, s.storeErr(id, err)
	}

	res := rbac.Resource{ID: t.ID, Owner: t.Owner, Private: t.Private}
	if err := rbac.CheckPermission(callerID, permission, res); err != nil {
		logger.WithTrace(ctx, s.logger).Info("Task permission denied",
			zap.String("task_id", id),
			zap.String("caller", callerID),
			zap.String("permission", permission),
		)
		return nil, apperr.Permission("only the owner may do that")
	}
	return t, nil
}

func (s *Service) storeErr(id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("task %s not found", id)
	}
	if errors.Is(err, repository.ErrForbidden) {
		return apperr.Permission("only the owner may do that")
	}
	return fmt.Errorf("task %s: %w", id, err)
}

func (s *Service) invalidateCount(ctx context.Context) {
	if s.counts == nil {
		return
	}
	if err := s.counts.Invalidate(ctx); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("Incomplete count cache invalidation failed", zap.Error(err))
	}
}
