package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	engerrors "github.com/Aman-CERP/searchd/internal/errors"
)

// Server listens on a Unix socket and dispatches JSON-RPC requests to a
// Handler, the same Handler every CLI subcommand talks to instead of
// re-opening the task store and index environments itself
// only the scheduler's single writer ever mutates an index, so every
// other process path — including the CLI — goes through this socket).
type Server struct {
	socketPath string
	listener   net.Listener
	handler    *Handler
	started    time.Time

	mu       sync.Mutex
	shutdown bool
	wg       sync.WaitGroup
}

// NewServer creates a new server that listens on the given socket path.
func NewServer(socketPath string, handler *Handler) *Server {
	return &Server{socketPath: socketPath, handler: handler}
}

// ListenAndServe starts the server and blocks until context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.socketPath, err)
	}
	s.listener = listener
	s.started = time.Now()

	defer func() {
		_ = listener.Close()
		_ = os.Remove(s.socketPath)
	}()

	slog.Info("daemon listening", slog.String("socket", s.socketPath))

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mu.Lock()
			shutdown := s.shutdown
			s.mu.Unlock()
			if shutdown {
				break
			}
			slog.Error("accept error", slog.String("error", err.Error()))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}

	s.wg.Wait()
	return ctx.Err()
}

// handleConnection processes a single client connection: one request,
// one response; clients reconnect per call rather than holding a
// session open.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		slog.Warn("failed to set connection deadline", slog.String("error", err.Error()))
	}

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	var req Request
	if err := decoder.Decode(&req); err != nil {
		_ = encoder.Encode(NewErrorResponse("", ErrCodeParseError, "failed to parse request"))
		return
	}

	_ = encoder.Encode(s.handleRequest(req))
}

// handleRequest dispatches req to the method matching its Method
// field.
func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodPing:
		return NewSuccessResponse(req.ID, PingResult{Pong: true})
	case MethodStatus:
		return NewSuccessResponse(req.ID, s.getStatus())
	case MethodTaskRegister:
		return dispatch(req, s.handler.HandleTaskRegister)
	case MethodTaskGet:
		return dispatch(req, s.handler.HandleTaskGet)
	case MethodTaskList:
		return dispatch(req, s.handler.HandleTaskList)
	case MethodTaskCancel:
		return dispatch(req, s.handler.HandleTaskCancel)
	case MethodDocumentGet:
		return dispatch(req, s.handler.HandleDocumentGet)
	case MethodDocumentSearch:
		return dispatch(req, s.handler.HandleDocumentSearch)
	case MethodIndexStats:
		return dispatch(req, s.handler.HandleIndexStats)
	default:
		return NewErrorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

// dispatch decodes req.Params into P, runs fn, and renders the result
// (or the engine error, converted to its HTTP status) as a Response.
// Generic over the params type so every method above shares one
// decode/error-mapping path instead of repeating it per case.
func dispatch[P any, R any](req Request, fn func(P) (R, error)) Response {
	var params P
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return NewErrorResponse(req.ID, ErrCodeInvalidParams, "failed to encode params")
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &params); err != nil {
			return NewErrorResponse(req.ID, ErrCodeInvalidParams, "failed to decode params")
		}
	}
	if v, ok := any(&params).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return NewErrorResponse(req.ID, ErrCodeInvalidParams, err.Error())
		}
	}

	result, err := fn(params)
	if err != nil {
		envelope := engerrors.ToEnvelope(err)
		resp := NewErrorResponse(req.ID, engerrors.GetCode(err).HTTPStatus(), envelope.Message)
		resp.Error.Data = envelope
		return resp
	}
	return NewSuccessResponse(req.ID, result)
}

// getStatus returns the current server status.
func (s *Server) getStatus() StatusResult {
	status := StatusResult{
		Running: true,
		PID:     os.Getpid(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	}
	if s.handler != nil {
		status.PendingTasks = s.handler.PendingTaskCount()
	}
	return status
}

// Close stops the server.
func (s *Server) Close() error {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
