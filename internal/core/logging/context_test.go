package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTaskID(t *testing.T) {
	ctx := WithTaskID(context.Background(), 1739000000000)

	got, ok := GetTaskID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(1739000000000), got)
}

func TestWithSyncGen(t *testing.T) {
	ctx := WithSyncGen(context.Background(), 7)

	got, ok := GetSyncGen(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), got)
}

func TestContextValues_NotPresent(t *testing.T) {
	ctx := context.Background()

	_, ok := GetTaskID(ctx)
	assert.False(t, ok)

	_, ok = GetSyncGen(ctx)
	assert.False(t, ok)
}
