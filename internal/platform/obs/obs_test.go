package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	ctx := WithRequestID(context.Background(), "req-1")

	func() (err error) {
		defer Time(ctx, "cycle.ok")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, "cycle.fail")(&err)
		return errors.New("boom")
	}()

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "op done", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["req_id"])
	assert.Equal(t, "op failed", entries[1].Message)
	assert.Equal(t, "cycle.fail", entries[1].ContextMap()["op"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	_, err := Init("loud")
	assert.Error(t, err)
	assert.Equal(t, "", RequestID(context.Background()))
}
