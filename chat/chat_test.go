package chat

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"educa/apperr"
)

type gateFunc func(userID, courseID uint) error

func (f gateFunc) Require(_ context.Context, userID, courseID uint) error { return f(userID, courseID) }

var identities = map[string]Identity{
	"ana-token": {UserID: 1, Username: "ana"},
	"bob-token": {UserID: 2, Username: "bob"},
	"eve-token": {UserID: 3, Username: "eve"},
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	auth := func(token string) (Identity, error) {
		id, ok := identities[token]
		if !ok {
			return Identity{}, errors.New("bad token")
		}
		return id, nil
	}
	gate := gateFunc(func(userID, courseID uint) error {
		if courseID == 5 && userID != 3 {
			return nil
		}
		return apperr.Forbidden("not enrolled in course")
	})
	s := NewServer(NewHub(nil), NewLocalBus(), auth, gate, nil)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.Start(ctx))

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(srv *httptest.Server, path string) (*websocket.Conn, error) {
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.Dial(wsURL, "", srv.URL)
}

func receive(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	return ev
}

func TestRoomBroadcastsToMembers(t *testing.T) {
	srv := newTestServer(t)

	ana, err := dial(srv, "/chat/room/5?token=ana-token")
	require.NoError(t, err)
	defer ana.Close()
	bob, err := dial(srv, "/chat/room/5?token=bob-token")
	require.NoError(t, err)
	defer bob.Close()

	// members subscribe after the handshake response is flushed
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, websocket.JSON.Send(ana, map[string]string{"message": "  hello  "}))

	for _, conn := range []*websocket.Conn{ana, bob} {
		ev := receive(t, conn)
		assert.Equal(t, "chat_message", ev.Type)
		assert.Equal(t, "hello", ev.Message)
		assert.Equal(t, "ana", ev.User)
		assert.Equal(t, "2024-05-01T12:00:00Z", ev.Datetime)
	}
}

func TestRoomRejectsUnauthenticatedAndUnenrolled(t *testing.T) {
	srv := newTestServer(t)

	_, err := dial(srv, "/chat/room/5")
	assert.Error(t, err)
	_, err = dial(srv, "/chat/room/5?token=forged")
	assert.Error(t, err)
	_, err = dial(srv, "/chat/room/5?token=eve-token")
	assert.Error(t, err)
	_, err = dial(srv, "/chat/room/6?token=ana-token")
	assert.Error(t, err)
	_, err = dial(srv, "/chat/room/abc?token=ana-token")
	assert.Error(t, err)
}

func TestHubDropsForSlowMembersAndCleansUp(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe("chat_1")
	other := hub.Subscribe("chat_2")
	assert.Equal(t, 1, hub.Members("chat_1"))

	for i := 0; i < sendBuffer+5; i++ {
		hub.Broadcast("chat_1", Event{Message: "m"})
	}
	assert.Len(t, sub.C, sendBuffer)
	assert.Empty(t, other.C)

	sub.Close()
	sub.Close()
	assert.Zero(t, hub.Members("chat_1"))
	hub.Broadcast("chat_1", Event{Message: "after close"})

	n := 0
	for range sub.C {
		n++
	}
	assert.Equal(t, sendBuffer, n)
	other.Close()
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	msg := strings.Repeat("a", maxMessageLen-1) + "é!"
	got := truncate(msg, maxMessageLen)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxMessageLen-1), got)

	exact := strings.Repeat("a", maxMessageLen-2) + "é"
	assert.Equal(t, exact, truncate(exact+"tail", maxMessageLen))
}

func TestGroupName(t *testing.T) {
	assert.Equal(t, "chat_42", GroupName(42))
}
