package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachitkumar2105/HeyChat/internal/models"
	"github.com/rachitkumar2105/HeyChat/internal/store"
)

type nopConn struct{}

func (nopConn) ReadMessage() (int, []byte, error) { return 0, nil, io.EOF }
func (nopConn) WriteMessage(int, []byte) error    { return nil }
func (nopConn) Close() error                      { return nil }

// fakeStore is an in-memory stand-in for the persistence collaborator.
type fakeStore struct {
	users      map[string]*models.User
	blocks     map[string]bool // "owner:target"
	chats      map[string]*models.Chat
	messages   map[string]*models.Message
	order      []string
	lastMsg    map[string]string
	lastActive map[string]time.Time
	failCreate error
	seq        int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*models.User{},
		blocks:     map[string]bool{},
		chats:      map[string]*models.Chat{},
		messages:   map[string]*models.Message{},
		lastMsg:    map[string]string{},
		lastActive: map[string]time.Time{},
	}
}

func (f *fakeStore) addUser(id string) {
	f.users[id] = &models.User{ID: id, Username: id}
}

func (f *fakeStore) addChat(a, b string) *models.Chat {
	ua, ub := models.OrderPair(a, b)
	chat := &models.Chat{ID: "chat-" + ua + "-" + ub, UserA: ua, UserB: ub, Status: "accepted"}
	f.chats[ua+":"+ub] = chat
	return chat
}

func (f *fakeStore) FindUserByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) IsBlocking(owner, target string) (bool, error) {
	return f.blocks[owner+":"+target], nil
}

func (f *fakeStore) FindAcceptedChat(a, b string) (*models.Chat, error) {
	ua, ub := models.OrderPair(a, b)
	if c, ok := f.chats[ua+":"+ub]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateMessage(m *models.Message) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.seq++
	m.ID = fmt.Sprintf("msg-%d", f.seq)
	m.CreatedAt = time.Now()
	cp := *m
	f.messages[m.ID] = &cp
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeStore) SetLastMessage(chatID, messageID string) error {
	f.lastMsg[chatID] = messageID
	return nil
}

func (f *fakeStore) FindMessageByID(id string) (*models.Message, error) {
	if m, ok := f.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateLastActive(userID string, t time.Time) error {
	f.lastActive[userID] = t
	return nil
}

func (f *fakeStore) FindUndeliveredMessages(userID string) ([]models.Message, error) {
	var out []models.Message
	for _, id := range f.order {
		m := f.messages[id]
		if m.ReceiverID == userID && !m.Delivered && !m.DeletedForEveryone {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkMessagesDelivered(ids []string) error {
	for _, id := range ids {
		if m, ok := f.messages[id]; ok {
			m.Delivered = true
		}
	}
	return nil
}

func (f *fakeStore) MarkMessageSeen(id string, at time.Time) (*models.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m.Seen = true
	m.Delivered = true
	m.SeenAt = &at
	cp := *m
	return &cp, nil
}

func newTestHub(t *testing.T) (*Hub, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	h := NewHub(fs, NewPresence(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, fs
}

// connect registers a handle directly on the hub internals; the tests drive
// the handlers synchronously instead of spinning the Run loop.
func connect(h *Hub, userID string) *Client {
	c := NewClient(userID, nopConn{})
	h.handleRegister(c)
	return c
}

func envOf(t *testing.T, event string, payload any) Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{Event: event, Data: data}
}

func recvFrame(t *testing.T, c *Client) (string, json.RawMessage) {
	t.Helper()
	select {
	case data := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env.Event, env.Data
	default:
		t.Fatal("expected a queued frame, got none")
		return "", nil
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

func TestRouteWithoutConversation(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	a := connect(h, "alice")

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))

	event, data := recvFrame(t, a)
	assert.Equal(t, EvError, event)
	var p errorPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, ErrNoActiveConversation.Error(), p.Message)
	assert.Empty(t, fs.messages, "no message row may be created")
}

func TestRouteRecipientOnline(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	chat := fs.addChat("alice", "bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))

	event, data := recvFrame(t, b)
	assert.Equal(t, EvReceiveMessage, event)
	var got MessageView
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, models.KindText, got.Kind)
	assert.True(t, got.Delivered)

	event, data = recvFrame(t, a)
	assert.Equal(t, EvMessageSent, event)
	var ack MessageView
	require.NoError(t, json.Unmarshal(data, &ack))
	assert.Equal(t, got.ID, ack.ID)

	event, data = recvFrame(t, a)
	assert.Equal(t, EvMessageDelivered, event)
	var del deliveredPayload
	require.NoError(t, json.Unmarshal(data, &del))
	assert.Equal(t, got.ID, del.MessageID)

	assert.Equal(t, got.ID, fs.lastMsg[chat.ID], "chat must point at the new message")
	assert.True(t, fs.messages[got.ID].Delivered)
}

func TestRouteRecipientOffline(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "later"}))

	event, data := recvFrame(t, a)
	assert.Equal(t, EvMessageSent, event)
	var ack MessageView
	require.NoError(t, json.Unmarshal(data, &ack))
	assert.False(t, ack.Delivered)
	// No delivery confirmation while the recipient is offline.
	expectSilence(t, a)
}

func TestBacklogFlushOnConnect(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "queued"}))
	_, data := recvFrame(t, a)
	var ack MessageView
	require.NoError(t, json.Unmarshal(data, &ack))
	require.False(t, ack.Delivered)

	// Bob connects: the queued message flips to delivered and the sender
	// hears about it. The content itself is not re-emitted; the recipient
	// fetches history over HTTP.
	b := connect(h, "bob")
	assert.True(t, fs.messages[ack.ID].Delivered)
	expectSilence(t, b)

	event, data := recvFrame(t, a)
	assert.Equal(t, EvUserOnline, event)
	event, data = recvFrame(t, a)
	assert.Equal(t, EvMessageDelivered, event)
	var del deliveredPayload
	require.NoError(t, json.Unmarshal(data, &del))
	assert.Equal(t, ack.ID, del.MessageID)

	// A second registration must not confirm the same message twice.
	b2 := connect(h, "bob")
	drain(b2)
	expectSilence(t, a)
}

func TestRouteBlockedSenderIsSilent(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	fs.blocks["bob:alice"] = true
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hello?"}))

	expectSilence(t, a)
	expectSilence(t, b)
	assert.Empty(t, fs.messages)
}

func TestRouteStorageFailureEmitsNothing(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	fs.failCreate = errors.New("disk on fire")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))

	expectSilence(t, a)
	expectSilence(t, b)
}

func TestRouteResolvesReplyPreview(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(b, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "alice", Content: "original"}))
	_, data := recvFrame(t, a)
	var first MessageView
	require.NoError(t, json.Unmarshal(data, &first))
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{
		To: "bob", Content: "reply", ReplyTo: first.ID,
	}))
	_, data = recvFrame(t, b)
	var reply MessageView
	require.NoError(t, json.Unmarshal(data, &reply))
	require.NotNil(t, reply.ReplyPreview)
	assert.Equal(t, first.ID, reply.ReplyPreview.ID)
	assert.Equal(t, "original", reply.ReplyPreview.Content)
	assert.Equal(t, "bob", reply.ReplyPreview.Sender)
}

func TestMarkSeenRelaysToRecordedSender(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))
	_, data := recvFrame(t, b)
	var msg MessageView
	require.NoError(t, json.Unmarshal(data, &msg))
	drain(a)

	h.dispatch(b, envOf(t, EvMessageSeen, SeenPayload{MessageID: msg.ID, SenderID: "alice"}))

	stored := fs.messages[msg.ID]
	assert.True(t, stored.Seen)
	assert.True(t, stored.Delivered, "seen implies delivered")
	require.NotNil(t, stored.SeenAt)
	assert.False(t, stored.SeenAt.Before(stored.CreatedAt))

	event, data := recvFrame(t, a)
	assert.Equal(t, EvMessageSeen, event)
	var relay seenRelayPayload
	require.NoError(t, json.Unmarshal(data, &relay))
	assert.Equal(t, msg.ID, relay.MessageID)
	assert.True(t, relay.SeenAt.Equal(*stored.SeenAt))
}

func TestMarkSeenRejectsNonRecipient(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addUser("mallory")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")
	m := connect(h, "mallory")
	drain(a)
	drain(m)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))
	_, data := recvFrame(t, a)
	var ack MessageView
	require.NoError(t, json.Unmarshal(data, &ack))

	// Mallory is not the recipient; the claim is dropped unapplied.
	h.dispatch(m, envOf(t, EvMessageSeen, SeenPayload{MessageID: ack.ID, SenderID: "alice"}))
	assert.False(t, fs.messages[ack.ID].Seen)
	expectSilence(t, a)
}

func TestMarkSeenRejectsWrongClaimedSender(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	fs.addChat("alice", "bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvPrivateMessage, PrivateMessagePayload{To: "bob", Content: "hi"}))
	_, data := recvFrame(t, b)
	var msg MessageView
	require.NoError(t, json.Unmarshal(data, &msg))
	drain(a)

	h.dispatch(b, envOf(t, EvMessageSeen, SeenPayload{MessageID: msg.ID, SenderID: "mallory"}))
	assert.False(t, fs.messages[msg.ID].Seen)
	expectSilence(t, a)
}

func TestTypingRelay(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.dispatch(a, envOf(t, EvTyping, TypingPayload{To: "bob"}))
	event, data := recvFrame(t, b)
	assert.Equal(t, EvUserTyping, event)
	var p typingRelayPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "alice", p.From)

	h.dispatch(a, envOf(t, EvStopTyping, TypingPayload{To: "bob"}))
	event, _ = recvFrame(t, b)
	assert.Equal(t, EvUserStopTyping, event)
}

func TestTypingToOfflineUserIsDropped(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	a := connect(h, "alice")

	h.dispatch(a, envOf(t, EvTyping, TypingPayload{To: "bob"}))
	expectSilence(t, a)

	// No buffering: connecting later replays nothing.
	b := connect(h, "bob")
	drain(b)
	expectSilence(t, b)
}

func TestPresenceBroadcasts(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	a := connect(h, "alice")

	b := connect(h, "bob")
	event, data := recvFrame(t, a)
	assert.Equal(t, EvUserOnline, event)
	var on onlinePayload
	require.NoError(t, json.Unmarshal(data, &on))
	assert.Equal(t, "bob", on.UserID)

	// Second handle: no repeated online broadcast.
	b2 := NewClient("bob", nopConn{})
	h.handleRegister(b2)
	expectSilence(t, a)

	// Dropping one of two handles: still online.
	h.handleUnregister(b2)
	expectSilence(t, a)

	h.handleUnregister(b)
	event, data = recvFrame(t, a)
	assert.Equal(t, EvUserOffline, event)
	var off offlinePayload
	require.NoError(t, json.Unmarshal(data, &off))
	assert.Equal(t, "bob", off.UserID)
	assert.False(t, off.LastActive.IsZero())
}

func TestAdminSkipsPresenceSideEffects(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	connect(h, models.ReservedAdminID)

	_, ok := fs.lastActive[models.ReservedAdminID]
	assert.False(t, ok, "admin must not touch lastActive or backlog")
}

func TestDeletionPropagation(t *testing.T) {
	h, fs := newTestHub(t)
	fs.addUser("alice")
	fs.addUser("bob")
	a := connect(h, "alice")
	b := connect(h, "bob")
	drain(a)
	drain(b)

	h.propagateDeletion(DeletePayload{MessageID: "msg-9", DeleteForEveryone: true, ReceiverID: "bob"})
	event, data := recvFrame(t, b)
	assert.Equal(t, EvMessageDeleted, event)
	var p deletedPayload
	require.NoError(t, json.Unmarshal(data, &p))
	assert.Equal(t, "msg-9", p.MessageID)
	assert.True(t, p.DeleteForEveryone)
	expectSilence(t, a)

	// Delete-for-me never reaches the realtime layer.
	h.propagateDeletion(DeletePayload{MessageID: "msg-9", DeleteForEveryone: false, ReceiverID: "bob"})
	expectSilence(t, b)
}
