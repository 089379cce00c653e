package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/rachitkumar2105/HeyChat/internal/metrics"
	"github.com/rachitkumar2105/HeyChat/internal/models"
)

type inbound struct {
	client *Client
	env    Envelope
}

type emitReq struct {
	userID string
	data   []byte
}

// Hub runs the realtime core: one goroutine owns every presence mutation and
// every event handler, so a disconnect and a concurrent register for the same
// user can never race. Handlers return a typed result; logging and metrics
// happen once, at the dispatch boundary.
type Hub struct {
	store    Store
	presence *Presence
	log      *slog.Logger
	now      func() time.Time

	registerCh   chan *Client
	unregisterCh chan *Client
	inboundCh    chan inbound
	emitCh       chan emitReq
}

func NewHub(store Store, presence *Presence, log *slog.Logger) *Hub {
	return &Hub{
		store:        store,
		presence:     presence,
		log:          log,
		now:          time.Now,
		registerCh:   make(chan *Client),
		unregisterCh: make(chan *Client),
		inboundCh:    make(chan inbound),
		emitCh:       make(chan emitReq, sendBuffer),
	}
}

// Presence exposes the directory for read-only use by HTTP handlers.
func (h *Hub) Presence() *Presence { return h.presence }

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.registerCh:
			h.handleRegister(c)
		case c := <-h.unregisterCh:
			h.handleUnregister(c)
		case in := <-h.inboundCh:
			h.dispatch(in.client, in.env)
		case req := <-h.emitCh:
			h.emitToUser(req.userID, req.data)
		}
	}
}

// Register hands a freshly authenticated connection to the hub goroutine.
func (h *Hub) Register(c *Client)   { h.registerCh <- c }
func (h *Hub) Unregister(c *Client) { h.unregisterCh <- c }

// Dispatch queues one inbound frame. Frames from a single connection arrive
// here in read order and the hub processes them in that order.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	h.inboundCh <- inbound{client: c, env: env}
}

// EmitToUser lets HTTP workflows push a frame through the hub goroutine to
// a user's live connections. Going through the loop keeps channel closes and
// sends on one goroutine.
func (h *Hub) EmitToUser(userID, event string, data any) {
	h.emitCh <- emitReq{userID: userID, data: encode(event, data)}
}

// NotifyDeleted is called by the HTTP delete-message workflow after it has
// persisted a delete-for-everyone, so the recipient hears about it live.
func (h *Hub) NotifyDeleted(messageID, receiverID string) {
	h.EmitToUser(receiverID, EvMessageDeleted, deletedPayload{
		MessageID:         messageID,
		DeleteForEveryone: true,
	})
}

// NotifyForwarded relays a message created by the HTTP forward workflow to
// the recipient's live connections.
func (h *Hub) NotifyForwarded(view MessageView) {
	h.EmitToUser(view.ReceiverID, EvReceiveMessage, view)
}

func (h *Hub) dispatch(c *Client, env Envelope) {
	var err error
	switch env.Event {
	case EvPrivateMessage:
		var p PrivateMessagePayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = h.routeMessage(c, p)
		}
	case EvTyping:
		var p TypingPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = h.relayTyping(c, p, EvUserTyping)
		}
	case EvStopTyping:
		var p TypingPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = h.relayTyping(c, p, EvUserStopTyping)
		}
	case EvMessageSeen:
		var p SeenPayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			err = h.markSeen(c, p)
		}
	case EvDeleteMessage:
		var p DeletePayload
		if err = json.Unmarshal(env.Data, &p); err == nil {
			h.propagateDeletion(p)
		}
	default:
		h.log.Debug("unknown event", "event", env.Event, "user", c.UserID)
		return
	}

	h.observe(c, env.Event, err)
}

// observe is the single funnel for handler outcomes. Only the missing
// conversation case surfaces to the client; every other failure is logged
// and swallowed so one bad event never tears down the connection.
func (h *Hub) observe(c *Client, event string, err error) {
	switch {
	case err == nil:
		metrics.WsEvents.WithLabelValues(event, "ok").Inc()
	case errors.Is(err, errSilentDrop):
		metrics.WsEvents.WithLabelValues(event, "dropped").Inc()
		h.log.Debug("event dropped", "event", event, "user", c.UserID)
	case errors.Is(err, ErrNoActiveConversation):
		metrics.WsEvents.WithLabelValues(event, "rejected").Inc()
		c.trySend(encode(EvError, errorPayload{Message: ErrNoActiveConversation.Error()}))
	default:
		metrics.WsEvents.WithLabelValues(event, "error").Inc()
		h.log.Error("event failed", "event", event, "user", c.UserID, "err", err)
	}
}

func (h *Hub) handleRegister(c *Client) {
	first := h.presence.Add(c)
	metrics.WsConnections.Inc()
	h.log.Info("user connected", "user", c.UserID, "conn", c.ID)

	if first {
		h.broadcastExcept(c.UserID, encode(EvUserOnline, onlinePayload{UserID: c.UserID}))
	}
	if c.UserID == models.ReservedAdminID {
		return
	}
	if err := h.store.UpdateLastActive(c.UserID, h.now()); err != nil {
		h.log.Error("update last active", "user", c.UserID, "err", err)
	}
	h.flushBacklog(c.UserID)
}

func (h *Hub) handleUnregister(c *Client) {
	known, last := h.presence.Remove(c)
	if !known {
		return
	}
	close(c.Send)
	metrics.WsConnections.Dec()
	h.log.Info("user disconnected", "user", c.UserID, "conn", c.ID)

	if !last {
		return
	}
	now := h.now()
	if c.UserID != models.ReservedAdminID {
		if err := h.store.UpdateLastActive(c.UserID, now); err != nil {
			h.log.Error("update last active", "user", c.UserID, "err", err)
		}
	}
	h.broadcastExcept(c.UserID, encode(EvUserOffline, offlinePayload{
		UserID:     c.UserID,
		LastActive: now,
	}))
}

// relayTyping forwards the indicator verbatim if the target is online and
// drops it otherwise. No buffering, no redelivery.
func (h *Hub) relayTyping(c *Client, p TypingPayload, event string) error {
	if p.To == "" {
		return errSilentDrop
	}
	h.emitToUser(p.To, encode(event, typingRelayPayload{From: c.UserID}))
	return nil
}

func (h *Hub) propagateDeletion(p DeletePayload) {
	if !p.DeleteForEveryone {
		// "Delete for me" is a pure storage mutation, nothing to relay.
		return
	}
	h.emitToUser(p.ReceiverID, encode(EvMessageDeleted, deletedPayload{
		MessageID:         p.MessageID,
		DeleteForEveryone: true,
	}))
}

// emitToUser sends a frame to every live connection of a user. Offline users
// simply receive nothing.
func (h *Hub) emitToUser(userID string, data []byte) {
	for _, cl := range h.presence.Lookup(userID) {
		cl.trySend(data)
	}
}

func (h *Hub) broadcastExcept(userID string, data []byte) {
	for _, cl := range h.presence.Snapshot() {
		if cl.UserID != userID {
			cl.trySend(data)
		}
	}
}
