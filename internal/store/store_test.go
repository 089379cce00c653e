package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachitkumar2105/HeyChat/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return s
}

func seedUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		DisplayName: username,
		Username:    username,
		Email:       username + "@example.com",
		Password:    "x",
	}
	require.NoError(t, s.CreateUser(u))
	return u
}

func TestChatPairIsUnordered(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")

	created, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	// Same pair in either order resolves to the same row.
	found, err := s.FindAcceptedChat(b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	again, err := s.EnsureChat(b.ID, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestFindAcceptedChatMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.FindAcceptedChat("nobody", "nothing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUndeliveredBacklogQuery(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")
	chat, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	mk := func(content string, delivered bool) *models.Message {
		m := &models.Message{
			ChatID:     chat.ID,
			SenderID:   a.ID,
			ReceiverID: b.ID,
			Content:    content,
			Kind:       models.KindText,
			Delivered:  delivered,
		}
		require.NoError(t, s.CreateMessage(m))
		return m
	}
	queued := mk("queued", false)
	mk("already there", true)
	gone := mk("deleted", false)
	require.NoError(t, s.MarkDeletedForEveryone(gone.ID))

	msgs, err := s.FindUndeliveredMessages(b.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, queued.ID, msgs[0].ID)

	require.NoError(t, s.MarkMessagesDelivered([]string{queued.ID}))
	msgs, err = s.FindUndeliveredMessages(b.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs, "flush must be idempotent")
}

func TestMarkMessageSeenImpliesDelivered(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")
	chat, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	m := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: "hi", Kind: models.KindText}
	require.NoError(t, s.CreateMessage(m))

	at := time.Now()
	updated, err := s.MarkMessageSeen(m.ID, at)
	require.NoError(t, err)
	assert.True(t, updated.Seen)
	assert.True(t, updated.Delivered)
	require.NotNil(t, updated.SeenAt)

	_, err = s.MarkMessageSeen("missing", at)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListMessagesFiltersDeletions(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")
	chat, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	keep := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: "keep", Kind: models.KindText}
	mine := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: "hidden for bob", Kind: models.KindText}
	everyone := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: "gone", Kind: models.KindText}
	for _, m := range []*models.Message{keep, mine, everyone} {
		require.NoError(t, s.CreateMessage(m))
	}
	require.NoError(t, s.DeleteForUser(mine.ID, b.ID))
	require.NoError(t, s.MarkDeletedForEveryone(everyone.ID))

	bobView, err := s.ListMessages(chat.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, bobView, 1)
	assert.Equal(t, keep.ID, bobView[0].ID)

	aliceView, err := s.ListMessages(chat.ID, a.ID)
	require.NoError(t, err)
	assert.Len(t, aliceView, 2, "delete-for-me is scoped to one user")
}

func TestDeleteForEveryoneRewritesContent(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")
	chat, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	m := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: "oops", FileURL: "/uploads/x.png", Kind: models.KindImage}
	require.NoError(t, s.CreateMessage(m))
	require.NoError(t, s.MarkDeletedForEveryone(m.ID))

	got, err := s.FindMessageByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, DeletedContent, got.Content)
	assert.Empty(t, got.FileURL)
	assert.True(t, got.DeletedForEveryone)
}

func TestClearChatForUser(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")
	chat, err := s.EnsureChat(a.ID, b.ID, a.ID)
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		m := &models.Message{ChatID: chat.ID, SenderID: a.ID, ReceiverID: b.ID, Content: content, Kind: models.KindText}
		require.NoError(t, s.CreateMessage(m))
	}
	require.NoError(t, s.ClearChatForUser(chat.ID, a.ID))

	aliceView, err := s.ListMessages(chat.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceView)

	bobView, err := s.ListMessages(chat.ID, b.ID)
	require.NoError(t, err)
	assert.Len(t, bobView, 3)
}

func TestBlockToggle(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")

	blocked, err := s.IsBlocking(b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	state, err := s.ToggleBlock(b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, state)
	blocked, _ = s.IsBlocking(b.ID, a.ID)
	assert.True(t, blocked)
	// Blocking is one-directional.
	reverse, _ := s.IsBlocking(a.ID, b.ID)
	assert.False(t, reverse)

	state, err = s.ToggleBlock(b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, state)
}

func TestFriendRequestFlow(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	b := seedUser(t, s, "bob")

	req, err := s.CreateChatRequest(a.ID, b.ID)
	require.NoError(t, err)

	pending, err := s.PendingRequests(b.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)

	require.NoError(t, s.UpdateRequestStatus(req.ID, models.RequestAccepted))
	require.NoError(t, s.AddFriends(a.ID, b.ID))

	friends, err := s.AreFriends(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, friends)
	friends, err = s.AreFriends(b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, friends, "friendship is recorded both ways")

	list, err := s.Friends(a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	pending, err = s.PendingRequests(b.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSearchUsersExcludesSelfAndBanned(t *testing.T) {
	s := openTestStore(t)
	a := seedUser(t, s, "alice")
	seedUser(t, s, "alina")
	banned := seedUser(t, s, "aline")
	_, err := s.ToggleBan(banned.ID)
	require.NoError(t, err)

	results, err := s.SearchUsers("ali", a.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alina", results[0].Username)
}
