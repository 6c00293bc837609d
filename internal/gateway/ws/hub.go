// Package ws is the gateway's WebSocket hub. A connection authenticates
// once with an "auth" message and every later message reuses that identity.
// Data messages are dispatched through the routing table to downstream
// services and answered with a "<type>_response" message.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/hugmood/internal/gateway/forward"
	"github.com/dmitrijs2005/hugmood/internal/gateway/routing"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Authenticator is implemented by authgate.Gate.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Forwarder is implemented by forward.Forwarder.
type Forwarder interface {
	Forward(ctx context.Context, req forward.Request) *forward.Response
}

type Hub struct {
	registry  *Registry
	gate      Authenticator
	forwarder Forwarder
	table     *routing.Table
	logger    logging.Logger
	upgrader  websocket.Upgrader
	now       func() time.Time
}

func NewHub(registry *Registry, gate Authenticator, forwarder Forwarder, table *routing.Table, logger logging.Logger) *Hub {
	return &Hub{
		registry:  registry,
		gate:      gate,
		forwarder: forwarder,
		table:     table,
		logger:    logger.With("module", "ws_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (h *Hub) Registry() *Registry { return h.registry }

// ServeHTTP upgrades the request and starts the connection pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "Failed to upgrade connection", "error", err)
		return
	}

	c := newConn(wsConn)
	h.registry.Add(c)
	h.logger.Info(r.Context(), "WebSocket client connected", "conn_id", c.id)

	go c.writePump()
	go h.readPump(c)
}

func (h *Hub) readPump(c *Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.disconnect(c)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Error(ctx, "WebSocket read error", "conn_id", c.id, "error", err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.logger.Warn(ctx, "Invalid message format", "conn_id", c.id, "error", err)
			continue
		}
		h.handle(ctx, c, env)
	}
}

func (h *Hub) disconnect(c *Conn) {
	last := h.registry.Remove(c)
	c.Close()

	ctx := context.Background()
	h.logger.Info(ctx, "WebSocket client disconnected", "conn_id", c.id)

	if last != nil {
		h.setPresence(ctx, last, false)
	}
}

func (h *Hub) handle(ctx context.Context, c *Conn, env Envelope) {
	switch env.Type {
	case TypeAuth:
		h.handleAuth(ctx, c, env)
		return
	case TypePing:
		h.reply(ctx, c, pongMessage{Type: TypePong, Timestamp: h.now().Format(time.RFC3339)})
		return
	}

	if !c.Authenticated() {
		h.reply(ctx, c, errorMessage{Type: TypeError, Error: "Authentication required"})
		return
	}

	if env.Type == TypeFetchData {
		h.handleFetch(ctx, c, env)
		return
	}

	target, ok := h.table.Message(env.Type)
	if !ok {
		h.reply(ctx, c, errorMessage{Type: TypeError, Error: "Unknown message type: " + env.Type})
		return
	}
	h.handleRouted(ctx, c, env, target)
}

func (h *Hub) handleAuth(ctx context.Context, c *Conn, env Envelope) {
	if identity := c.Identity(); identity != nil {
		h.reply(ctx, c, resultMessage{Type: TypeAuthResponse, Success: true, User: identityView(identity)})
		return
	}

	var in authData
	_ = json.Unmarshal(env.Data, &in)
	if in.Token == "" {
		h.reply(ctx, c, resultMessage{Type: TypeAuthResponse, Error: "Token is required"})
		return
	}

	identity, err := h.gate.Authenticate(ctx, in.Token)
	if err != nil {
		h.reply(ctx, c, resultMessage{Type: TypeAuthResponse, Error: "Invalid token"})
		return
	}

	first := h.registry.Authenticate(c, identity)
	h.logger.Info(ctx, "WebSocket client authenticated", "conn_id", c.id, "user_id", identity.ID, "degraded", identity.Degraded)
	h.reply(ctx, c, resultMessage{Type: TypeAuthResponse, Success: true, User: identityView(identity)})

	if first {
		h.setPresence(ctx, identity, true)
	}
}

func (h *Hub) handleFetch(ctx context.Context, c *Conn, env Envelope) {
	var in fetchData
	_ = json.Unmarshal(env.Data, &in)
	if in.Type == "" {
		h.reply(ctx, c, resultMessage{Type: TypeFetchResponse, Error: "Data type is required"})
		return
	}

	target, ok := h.table.Fetch(in.Type)
	if !ok {
		h.reply(ctx, c, resultMessage{Type: TypeFetchResponse, Error: "Unknown data type: " + in.Type})
		return
	}

	identity := c.Identity()
	userID := rawID(in.UserID)
	if userID == "" {
		userID = identity.IDString()
	}
	path, err := routing.Expand(target.Path, map[string]string{routing.UserIDParam: userID})
	if err != nil {
		h.reply(ctx, c, resultMessage{Type: TypeFetchResponse, Error: "No endpoint mapped for data type: " + in.Type})
		return
	}

	resp := h.forwarder.Forward(ctx, forward.Request{
		Service:  target.Service,
		Path:     path,
		Method:   http.MethodGet,
		Identity: identity,
	})
	switch {
	case resp.OK():
		h.reply(ctx, c, resultMessage{
			Type:    TypeFetchResponse,
			Success: true,
			Data:    fetchResult{Type: in.Type, Result: resp.JSON()},
		})
	case resp.Status == http.StatusServiceUnavailable:
		h.reply(ctx, c, resultMessage{Type: TypeFetchResponse, Error: "Service unavailable"})
	default:
		h.reply(ctx, c, resultMessage{Type: TypeFetchResponse, Error: "Service returned error: " + strconv.Itoa(resp.Status)})
	}
}

func (h *Hub) handleRouted(ctx context.Context, c *Conn, env Envelope, target routing.Target) {
	body := []byte(env.Data)
	if len(body) == 0 {
		body = []byte("{}")
	}

	replyType := env.Type + responseSuffix
	path, err := routing.Expand(target.Path, map[string]string{routing.UserIDParam: c.Identity().IDString()})
	if err != nil {
		h.reply(ctx, c, resultMessage{Type: replyType, Error: "Unknown message type: " + env.Type})
		return
	}

	resp := h.forwarder.Forward(ctx, forward.Request{
		Service:  target.Service,
		Path:     path,
		Method:   http.MethodPost,
		Body:     body,
		Identity: c.Identity(),
	})
	if resp.OK() {
		h.reply(ctx, c, resultMessage{Type: replyType, Success: true, Data: resp.JSON()})
		return
	}
	msg := resp.ErrorMessage()
	if resp.Status == http.StatusServiceUnavailable {
		msg = "Service unavailable"
	}
	h.reply(ctx, c, resultMessage{Type: replyType, Error: msg})
}

// setPresence tells the user service about the change and notifies every
// other authenticated connection.
func (h *Hub) setPresence(ctx context.Context, identity *models.Identity, online bool) {
	path, _ := routing.Expand(routing.OnlineStatus.Path, map[string]string{routing.UserIDParam: identity.IDString()})
	body, _ := json.Marshal(onlineBody{IsOnline: online})

	resp := h.forwarder.Forward(ctx, forward.Request{
		Service:  routing.OnlineStatus.Service,
		Path:     path,
		Method:   http.MethodPut,
		Body:     body,
		Identity: identity,
	})
	if !resp.OK() {
		h.logger.Warn(ctx, "presence update failed", "user_id", identity.ID, "online", online, "status", resp.Status)
	}

	status := userStatusMessage{Type: TypeUserStatus, UserID: identity.ID, IsOnline: online}
	if !online {
		status.LastOnline = h.now().Format(time.RFC3339)
	}
	msg, err := json.Marshal(status)
	if err != nil {
		return
	}
	h.registry.Broadcast(msg, func(other *Conn) bool {
		id := other.Identity()
		return id != nil && id.ID != identity.ID
	})
}

func (h *Hub) reply(ctx context.Context, c *Conn, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error(ctx, "encode message", "error", err)
		return
	}
	if !c.enqueue(msg) {
		h.logger.Warn(ctx, "dropping message, send buffer full", "conn_id", c.id)
	}
}

// Shutdown closes every connection.
func (h *Hub) Shutdown() {
	h.registry.CloseAll()
}

// identityView is the user object sent in auth_response. Degraded
// identities only know their id.
func identityView(identity *models.Identity) any {
	if identity.User != nil {
		return identity.User
	}
	return map[string]int64{"id": identity.ID}
}

// rawID accepts a JSON string or number.
func rawID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
