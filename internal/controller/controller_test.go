package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/sharetube/watch-together/internal/domain"
	conninmemory "github.com/sharetube/watch-together/internal/repository/connection/inmemory"
	sessioninmemory "github.com/sharetube/watch-together/internal/repository/session/inmemory"
	"github.com/sharetube/watch-together/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Participant{ID: "alice", Name: "Alice", Avatar: "a.png"}
	bob   = domain.Participant{ID: "bob", Name: "Bob", Avatar: "b.png"}
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	svc := session.New(sessioninmemory.NewRepo(logger), conninmemory.NewRepo[session.Conn](logger))
	c := NewController(svc, logger, &Config{
		SendBuffer: 16,
		ReadLimit:  1 << 15,
		PingPeriod: time.Minute,
	})

	srv := httptest.NewServer(c.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func createSession(t *testing.T, srv *httptest.Server, ownerID string) string {
	t.Helper()

	resp, err := http.Post(srv.URL+"/session", "application/json", strings.NewReader(`{"ownerId":"`+ownerID+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)

	return body.ID
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(frame{Type: frameType, Payload: data}))
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))

	return f
}

func readAction(t *testing.T, conn *websocket.Conn) domain.Action {
	t.Helper()

	f := readFrame(t, conn)
	require.Equal(t, outputTypeAction, f.Type)
	action, err := domain.DecodeAction(f.Payload)
	require.NoError(t, err)

	return action
}

func sendAction(t *testing.T, conn *websocket.Conn, action domain.Action) {
	t.Helper()
	writeFrame(t, conn, inputTypeAction, action)
}

// joinAs dials, joins and consumes the room-sync snapshot.
func joinAs(t *testing.T, srv *httptest.Server, sessionID string, p domain.Participant) (*websocket.Conn, *domain.Session) {
	t.Helper()

	conn := dial(t, srv)
	writeFrame(t, conn, inputTypeJoin, map[string]any{"sessionId": sessionID, "participant": p})

	sync, ok := readAction(t, conn).(domain.RoomSync)
	require.True(t, ok)

	return conn, sync.Session
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/session", "application/json", strings.NewReader(`{"ownerId":"alice"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "alice", created["ownerId"])
	assert.Equal(t, map[string]any{}, created["participants"])
	assert.Equal(t, []any{}, created["messages"])
	assert.NotContains(t, created, "video")

	id, ok := created["id"].(string)
	require.True(t, ok)

	getResp, err := http.Get(srv.URL + "/session/" + id)
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var got struct {
		Success bool           `json:"success"`
		Session map[string]any `json:"session"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.True(t, got.Success)
	assert.Equal(t, id, got.Session["id"])
	assert.Equal(t, "alice", got.Session["ownerId"])
}

func TestCreateSessionMissingFields(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "empty owner", body: `{"ownerId":""}`},
		{name: "empty body", body: ``},
		{name: "not json", body: `owner=alice`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/session", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, map[string]any{"success": false, "error": "Missing fields"}, body)
		})
	}
}

func TestGetUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/session/doesnotexist")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"success": false, "error": "Session not found"}, body)
}

func TestWSJoinAndRelayWithoutEcho(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	aliceConn, snapshot := joinAs(t, srv, sessionID, alice)
	assert.Equal(t, []domain.Participant{alice}, snapshot.Participants())

	bobConn, snapshot := joinAs(t, srv, sessionID, bob)
	assert.Equal(t, []domain.Participant{alice, bob}, snapshot.Participants())
	assert.Equal(t, domain.AddParticipant{Participant: bob}, readAction(t, aliceConn))

	video := domain.SetVideo{Video: domain.VideoState{Source: lo.ToPtr("yt:abc"), Position: lo.ToPtr(4.0)}}
	sendAction(t, aliceConn, video)
	assert.Equal(t, video, readAction(t, bobConn))

	message := domain.AddMessage{Message: domain.NewMessage(bob, "nice")}
	sendAction(t, bobConn, message)
	assert.Equal(t, message, readAction(t, aliceConn), "alice must not receive her own set-video")

	resp, err := http.Get(srv.URL + "/session/" + sessionID)
	require.NoError(t, err)
	defer resp.Body.Close()
	var got struct {
		Session *domain.Session `json:"session"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	current, ok := got.Session.Video()
	require.True(t, ok)
	assert.Equal(t, "yt:abc", lo.FromPtr(current.Source))
	assert.Equal(t, []domain.Message{message.Message}, got.Session.Messages())
}

func TestWSCommandAnnouncedByAssistant(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	aliceConn, _ := joinAs(t, srv, sessionID, alice)
	bobConn, _ := joinAs(t, srv, sessionID, bob)
	readAction(t, aliceConn)

	sendAction(t, bobConn, domain.Command{Token: domain.CommandPause})

	got, ok := readAction(t, aliceConn).(domain.AddMessage)
	require.True(t, ok)
	assert.Equal(t, session.Assistant, got.Message.Author)
	assert.Equal(t, session.Assistant.ID, got.Message.AuthorID)
	assert.Equal(t, "video is paused sir", got.Message.Content)

	reply := domain.AddMessage{Message: domain.NewMessage(alice, "ok")}
	sendAction(t, aliceConn, reply)
	assert.Equal(t, reply, readAction(t, bobConn), "the commander must not receive the announcement")
}

func TestWSJoinRejected(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)
	joinAs(t, srv, sessionID, alice)

	tests := []struct {
		name    string
		payload any
		message string
	}{
		{
			name:    "unknown session",
			payload: map[string]any{"sessionId": "nope", "participant": bob},
			message: "Session not found",
		},
		{
			name:    "unknown session without participant",
			payload: map[string]any{"sessionId": "nope"},
			message: "Session not found",
		},
		{
			name:    "participant already in session",
			payload: map[string]any{"sessionId": sessionID, "participant": alice},
			message: "Participant already in session",
		},
		{
			name:    "no participant",
			payload: map[string]any{"sessionId": sessionID},
			message: "No participant provided",
		},
		{
			name:    "participant without id",
			payload: map[string]any{"sessionId": sessionID, "participant": map[string]any{"name": "Ghost"}},
			message: "No participant provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dial(t, srv)
			writeFrame(t, conn, inputTypeJoin, tt.payload)

			f := readFrame(t, conn)
			assert.Equal(t, outputTypeError, f.Type)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, string(f.Payload))

			_, _, err := conn.ReadMessage()
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
		})
	}
}

func TestWSOwnerDisconnectPausesVideo(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	aliceConn, _ := joinAs(t, srv, sessionID, alice)
	bobConn, _ := joinAs(t, srv, sessionID, bob)
	readAction(t, aliceConn)

	sendAction(t, aliceConn, domain.SetVideo{Video: domain.VideoState{Source: lo.ToPtr("yt:abc"), Position: lo.ToPtr(30.0)}})
	readAction(t, bobConn)

	require.NoError(t, aliceConn.Close())

	assert.Equal(t, domain.RemoveParticipant{Participant: alice}, readAction(t, bobConn))
	assert.Equal(t, domain.SetVideo{Video: domain.VideoState{Source: lo.ToPtr("yt:abc"), Position: lo.ToPtr(30.0), Paused: lo.ToPtr(true)}}, readAction(t, bobConn))
}

func TestWSMalformedFramesKeepConnection(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	aliceConn, _ := joinAs(t, srv, sessionID, alice)
	bobConn, _ := joinAs(t, srv, sessionID, bob)
	readAction(t, aliceConn)

	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance","payload":{}}`)))
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"action","payload":{"kind":"set-video","payload":{"paused":"yes"}}}`)))
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"action","payload":{"kind":"room-sync","payload":{}}}`)))

	unknown := domain.Unknown{Name: "reaction", Payload: json.RawMessage(`{"emoji":"+1"}`)}
	sendAction(t, aliceConn, unknown)

	got := readAction(t, bobConn)
	assert.Equal(t, domain.Kind("reaction"), got.Kind())
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"reaction","payload":{"emoji":"+1"}}`, string(data))
}

func TestWSActionBeforeJoinIsDropped(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	early := dial(t, srv)
	sendAction(t, early, domain.AddMessage{Message: domain.NewMessage(bob, "too soon")})

	aliceConn, _ := joinAs(t, srv, sessionID, alice)
	writeFrame(t, early, inputTypeJoin, map[string]any{"sessionId": sessionID, "participant": bob})

	sync, ok := readAction(t, early).(domain.RoomSync)
	require.True(t, ok)
	assert.Empty(t, sync.Session.Messages())
	assert.Equal(t, domain.AddParticipant{Participant: bob}, readAction(t, aliceConn))
}

func TestWSTruncatedAndEmptyFramesKeepParticipant(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{name: "truncated", frame: `{"type":`},
		{name: "empty", frame: ``},
		{name: "not an object", frame: `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			sessionID := createSession(t, srv, alice.ID)

			aliceConn, _ := joinAs(t, srv, sessionID, alice)
			bobConn, _ := joinAs(t, srv, sessionID, bob)
			readAction(t, aliceConn)

			require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(tt.frame)))

			message := domain.AddMessage{Message: domain.NewMessage(alice, "still here")}
			sendAction(t, aliceConn, message)
			assert.Equal(t, message, readAction(t, bobConn))

			resp, err := http.Get(srv.URL + "/session/" + sessionID)
			require.NoError(t, err)
			defer resp.Body.Close()
			var got struct {
				Session *domain.Session `json:"session"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.True(t, got.Session.HasParticipant(alice.ID))
		})
	}
}

func TestWSVideoForwardedAsSent(t *testing.T) {
	srv := newTestServer(t)
	sessionID := createSession(t, srv, alice.ID)

	aliceConn, _ := joinAs(t, srv, sessionID, alice)
	bobConn, _ := joinAs(t, srv, sessionID, bob)
	readAction(t, aliceConn)

	sent := `{"kind":"set-video","payload":{"url":"https://y/abc","paused":true,"time":12}}`
	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"action","payload":`+sent+`}`)))

	f := readFrame(t, bobConn)
	require.Equal(t, outputTypeAction, f.Type)
	assert.JSONEq(t, sent, string(f.Payload))
}
