package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/searchd/internal/task"
)

func testSocketPath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), fmt.Sprintf("searchd-test-%d.sock", time.Now().UnixNano()))
	t.Cleanup(func() { _ = os.Remove(path) })
	return path
}

// startTestServer brings up a Server backed by a real Handler over a
// real task store and index manager, and returns a Client already
// pointed at it.
func startTestServer(t *testing.T) *Client {
	t.Helper()
	socketPath := testSocketPath(t)
	h := newTestHandler(t)
	srv := NewServer(socketPath, h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.ListenAndServe(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the listener a moment to come up.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	return NewClient(Config{SocketPath: socketPath, Timeout: 5 * time.Second})
}

func TestServer_PingAndStatus(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 0, status.PendingTasks)
}

func TestServer_TaskLifecycleOverSocket(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	registered, err := client.RegisterTask(ctx, TaskRegisterParams{
		IndexUID: "movies",
		Content:  task.Content{Kind: task.ContentIndexCreation},
	})
	require.NoError(t, err)
	assert.Equal(t, task.ID(1), registered.ID)

	status, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.PendingTasks)

	got, err := client.GetTask(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, got.ID)

	list, err := client.ListTasks(ctx, TaskListParams{IndexUID: "movies"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	canceled, err := client.CancelTask(ctx, registered.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, task.StatusFailed, canceled.Status())
}

func TestServer_TaskGetNotFound_ReturnsEngineErrorCode(t *testing.T) {
	client := startTestServer(t)
	_, err := client.GetTask(context.Background(), 999)
	require.Error(t, err)
}

func TestServer_UnknownMethod(t *testing.T) {
	client := startTestServer(t)
	resp, err := client.call(context.Background(), "nonexistent", nil)
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}
