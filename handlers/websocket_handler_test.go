package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/league-system/live"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/services"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLeagueSocket(t *testing.T, ss services.StandingsService) (*live.Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := live.NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(NewWebSocketHandler(hub, ss, []string{"https://league.example.com"}).ServeLeague))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) services.LeagueEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event services.LeagueEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestServeLeague_SnapshotThenBroadcast(t *testing.T) {
	ss := &fakeStandingsService{standings: []models.Standing{{ID: "s1", PlayerID: "p1", Position: 1}}}
	hub, url := startLeagueSocket(t, ss)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	snapshot := readEvent(t, conn)
	assert.Equal(t, services.EventStandingsUpdated, snapshot.Type)
	assert.Equal(t, services.LeagueRoom, snapshot.RoomID)

	require.Eventually(t, func() bool { return hub.RoomSize(services.LeagueRoom) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(services.LeagueRoom, services.LeagueEvent{Type: services.EventMatchScheduled, Payload: map[string]string{"id": "m-1"}})
	assert.Equal(t, services.EventMatchScheduled, readEvent(t, conn).Type)
}

func TestServeLeague_RejectsForeignOrigin(t *testing.T) {
	_, url := startLeagueSocket(t, &fakeStandingsService{})

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
