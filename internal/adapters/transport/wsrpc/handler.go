package wsrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bnema/nebula-graph-cli/internal/ports"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
)

// Backend opens the server-side peer for one websocket client.
type Backend func(r *http.Request) (ports.TransportConn, error)

// Handler serves the protocol by forwarding every frame to a TransportConn.
type Handler struct {
	backend  Backend
	upgrader websocket.Upgrader
	logger   log.Logger
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(backend Backend, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Handler{
		backend: backend,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Error(h.logger).Log("msg", "error upgrading websocket", "err", err)
		return
	}
	defer func() {
		if err := ws.Close(); err != nil {
			level.Debug(h.logger).Log("msg", "error closing websocket", "err", err)
		}
	}()

	peer, err := h.backend(r)
	if err != nil {
		if err := ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())); err != nil {
			level.Error(h.logger).Log("msg", "error sending close frame", "err", err)
		}
		return
	}
	defer peer.Close()

	ctx := context.WithoutCancel(r.Context())
	for {
		var req Request
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				level.Warn(h.logger).Log("msg", "websocket read failed", "err", err)
			}
			return
		}

		if err := ws.WriteJSON(h.dispatch(ctx, peer, req)); err != nil {
			level.Warn(h.logger).Log("msg", "websocket write failed", "err", err)
			return
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, peer ports.TransportConn, req Request) Response {
	result, err := h.invoke(ctx, peer, req)
	if err != nil {
		return Response{ID: req.ID, Error: &RPCError{Message: err.Error()}}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return Response{ID: req.ID, Error: &RPCError{Message: fmt.Sprintf("encode result: %v", err)}}
	}
	return Response{ID: req.ID, Result: raw}
}

func (h *Handler) invoke(ctx context.Context, peer ports.TransportConn, req Request) (any, error) {
	switch req.Method {
	case MethodAuthenticate:
		var params AuthenticateParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		result, err := peer.Authenticate(ctx, params.Username, params.Password)
		if err != nil {
			return nil, err
		}
		return encodeAuth(result), nil
	case MethodExecute:
		var params ExecuteParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		result, err := peer.Execute(ctx, params.SessionID, params.Statement)
		if err != nil {
			return nil, err
		}
		return encodeExecution(result), nil
	case MethodSignout:
		var params SignoutParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		if err := peer.Signout(ctx, params.SessionID); err != nil {
			return nil, err
		}
		return struct{}{}, nil
	default:
		return nil, fmt.Errorf("unknown method %q", req.Method)
	}
}
