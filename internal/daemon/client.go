package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
	"github.com/Aman-CERP/searchd/internal/task"
)

// Client connects to a running daemon to register and inspect tasks
// and to read documents, without opening the underlying stores itself.
type Client struct {
	socketPath string
	timeout    time.Duration
	requestID  atomic.Uint64
	breaker    *engerrors.CircuitBreaker
}

// NewClient creates a new daemon client. A dedicated circuit breaker
// per client guards the reconnect path: once the daemon has refused
// enough consecutive connections, further calls fail fast instead of
// each waiting out the dial timeout.
func NewClient(cfg Config) *Client {
	return &Client{
		socketPath: cfg.SocketPath,
		timeout:    cfg.Timeout,
		breaker:    engerrors.NewCircuitBreaker("daemon-client"),
	}
}

// Connect establishes a connection to the daemon, through the client's
// circuit breaker.
func (c *Client) Connect() (net.Conn, error) {
	conn, err := engerrors.CircuitExecuteWithResult(c.breaker,
		func() (net.Conn, error) {
			return net.DialTimeout("unix", c.socketPath, c.timeout)
		},
		func() (net.Conn, error) {
			return nil, engerrors.ErrCircuitOpen
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return conn, nil
}

// IsRunning checks if the daemon is accepting connections.
func (c *Client) IsRunning() bool {
	conn, err := c.Connect()
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Ping checks if the daemon is responsive.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.call(ctx, MethodPing, nil)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("ping failed: %s", resp.Error.Message)
	}
	return nil
}

// Status retrieves daemon status.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var result StatusResult
	if err := c.callInto(ctx, MethodStatus, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RegisterTask registers a new task.
func (c *Client) RegisterTask(ctx context.Context, params TaskRegisterParams) (*task.Task, error) {
	var result task.Task
	if err := c.callInto(ctx, MethodTaskRegister, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTask retrieves one task by id.
func (c *Client) GetTask(ctx context.Context, id task.ID) (*task.Task, error) {
	var result task.Task
	if err := c.callInto(ctx, MethodTaskGet, TaskGetParams{ID: id}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks lists tasks matching params.
func (c *Client) ListTasks(ctx context.Context, params TaskListParams) ([]*task.Task, error) {
	var result []*task.Task
	if err := c.callInto(ctx, MethodTaskList, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CancelTask cancels a not-yet-executing task.
func (c *Client) CancelTask(ctx context.Context, id, by task.ID) (*task.Task, error) {
	var result task.Task
	if err := c.callInto(ctx, MethodTaskCancel, TaskCancelParams{ID: id, By: by}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDocument projects one document by its external id.
func (c *Client) GetDocument(ctx context.Context, params DocumentGetParams) (map[string]any, error) {
	var result map[string]any
	if err := c.callInto(ctx, MethodDocumentGet, params, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchDocuments scans an index for documents matching an optional
// filter expression. It is a linear scan over stored documents, not a
// ranked search.
func (c *Client) SearchDocuments(ctx context.Context, params DocumentSearchParams) (*DocumentSearchResult, error) {
	var result DocumentSearchResult
	if err := c.callInto(ctx, MethodDocumentSearch, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// IndexStats reports one index's document count.
func (c *Client) IndexStats(ctx context.Context, indexUID string) (*IndexStatsResult, error) {
	var result IndexStatsResult
	if err := c.callInto(ctx, MethodIndexStats, IndexStatsParams{IndexUID: indexUID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// call sends a request and returns the raw response.
func (c *Client) call(ctx context.Context, method string, params any) (*Response, error) {
	conn, err := c.Connect()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}

	req := Request{JSONRPC: "2.0", Method: method, Params: params, ID: c.nextID()}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}
	return &resp, nil
}

// callInto calls method and decodes a successful result into out.
func (c *Client) callInto(ctx context.Context, method string, params any, out any) error {
	resp, err := c.call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s failed: %s (code: %d)", method, resp.Error.Message, resp.Error.Code)
	}

	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// nextID generates a unique request ID.
func (c *Client) nextID() string {
	return fmt.Sprintf("req-%d", c.requestID.Add(1))
}
