package logging

import "context"

type contextKey string

const (
	taskIDKey  contextKey = "task_id"
	syncGenKey contextKey = "sync_gen"
)

// WithTaskID adds a task ID to the context.
func WithTaskID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, taskIDKey, id)
}

// WithSyncGen adds the generation of the running sync attempt to the context.
func WithSyncGen(ctx context.Context, gen uint64) context.Context {
	return context.WithValue(ctx, syncGenKey, gen)
}

// GetTaskID retrieves the task ID from the context.
func GetTaskID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(taskIDKey).(int64)
	return id, ok
}

// GetSyncGen retrieves the sync generation from the context.
func GetSyncGen(ctx context.Context) (uint64, bool) {
	gen, ok := ctx.Value(syncGenKey).(uint64)
	return gen, ok
}
