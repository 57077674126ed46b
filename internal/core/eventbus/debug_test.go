package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/eventbus/testbus"
	"github.com/colonyops/zenflow/internal/core/task"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishTaskAdded(eventbus.TaskAddedPayload{Task: task.Task{ID: 1, Text: "a"}})
	tb.PublishTaskRemoved(eventbus.TaskRemovedPayload{ID: 1})

	tb.AssertPublished(t, eventbus.EventTaskRemoved)
	assert.Contains(t, buf.String(), `"event":"task.added"`)
}
