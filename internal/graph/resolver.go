package graph

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"simpletodos/internal/apperr"
	"simpletodos/internal/model"
	"simpletodos/internal/service/auth"
	"simpletodos/internal/service/task"
	"simpletodos/pkg/logger"
)

// Resolver is the root of Query and Mutation.
type Resolver struct {
	tasks  *task.Service
	users  *auth.Service
	logger *zap.Logger
}

func NewResolver(tasks *task.Service, users *auth.Service, logger *zap.Logger) *Resolver {
	return &Resolver{tasks: tasks, users: users, logger: logger}
}

func (r *Resolver) Tasks(ctx context.Context) ([]*TaskResolver, error) {
	tasks, err := r.tasks.List(ctx)
	if err != nil {
		return nil, r.fail(ctx, "tasks", err)
	}
	out := make([]*TaskResolver, len(tasks))
	for i := range tasks {
		out[i] = &TaskResolver{t: &tasks[i]}
	}
	return out, nil
}

func (r *Resolver) CurrentUser(ctx context.Context) (*UserResolver, error) {
	u, err := r.users.CurrentUser(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return nil, r.fail(ctx, "currentUser", err)
	}
	if u == nil {
		return nil, nil
	}
	return &UserResolver{u: u}, nil
}

func (r *Resolver) IncompleteCount(ctx context.Context) (int32, error) {
	n, err := r.tasks.IncompleteCount(ctx)
	if err != nil {
		return 0, r.fail(ctx, "incompleteCount", err)
	}
	return int32(n), nil
}

func (r *Resolver) AddTask(ctx context.Context, args struct{ Text string }) (*TaskResolver, error) {
	t, err := r.tasks.AddTask(ctx, auth.UserIDFromContext(ctx), args.Text)
	return r.taskResult(ctx, "addTask", t, err)
}

func (r *Resolver) DeleteTask(ctx context.Context, args struct{ ID string }) (*TaskResolver, error) {
	t, err := r.tasks.DeleteTask(ctx, auth.UserIDFromContext(ctx), args.ID)
	return r.taskResult(ctx, "deleteTask", t, err)
}

func (r *Resolver) SetChecked(ctx context.Context, args struct {
	ID         string
	SetChecked bool
}) (*TaskResolver, error) {
	t, err := r.tasks.SetChecked(ctx, auth.UserIDFromContext(ctx), args.ID, args.SetChecked)
	return r.taskResult(ctx, "setChecked", t, err)
}

func (r *Resolver) SetPrivate(ctx context.Context, args struct {
	ID           string
	SetToPrivate bool
}) (*TaskResolver, error) {
	t, err := r.tasks.SetPrivate(ctx, auth.UserIDFromContext(ctx), args.ID, args.SetToPrivate)
	return r.taskResult(ctx, "setPrivate", t, err)
}

func (r *Resolver) taskResult(ctx context.Context, field string, t *model.Task, err error) (*TaskResolver, error) {
	if err != nil {
		return nil, r.fail(ctx, field, err)
	}
	return &TaskResolver{t: t}, nil
}

// fail converts err into what the executor renders. Domain errors pass
// through with their code; anything else is logged and hidden.
func (r *Resolver) fail(ctx context.Context, field string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	logger.WithTrace(ctx, r.logger).Error("Resolver failed",
		zap.String("field", field),
		zap.Error(err),
	)
	return apperr.Internal()
}

type TaskResolver struct {
	t *model.Task
}

func (r *TaskResolver) ID() string    { return r.t.ID }
func (r *TaskResolver) Text() string  { return r.t.Text }
func (r *TaskResolver) Email() string { return r.t.Email }
func (r *TaskResolver) Owner() string { return r.t.Owner }
func (r *TaskResolver) Checked() bool { return r.t.Checked }
func (r *TaskResolver) Private() bool { return r.t.Private }
func (r *TaskResolver) CreatedAt() string {
	return r.t.CreatedAt.UTC().Format(time.RFC3339Nano)
}

type UserResolver struct {
	u *model.User
}

func (r *UserResolver) ID() string { return r.u.ID }

func (r *UserResolver) Emails() []*EmailResolver {
	out := make([]*EmailResolver, len(r.u.Emails))
	for i := range r.u.Emails {
		out[i] = &EmailResolver{address: r.u.Emails[i].Address}
	}
	return out
}

type EmailResolver struct {
	address string
}

func (r *EmailResolver) Address() string { return r.address }
