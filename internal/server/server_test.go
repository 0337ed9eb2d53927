package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/fairline/internal/core/pricing"
	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/league"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg, err := league.NewRegistry([]league.Profile{
		{Name: "Premier League", Country: "England", AverageGoals: 2.85, DrawRate: 0.23, Aliases: []string{"EPL"}},
	})
	require.NoError(t, err)
	q, err := quoting.NewQuoter(reg, pricing.DefaultParams())
	require.NoError(t, err)

	srv := NewServer(q)
	srv.now = func() time.Time { return time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC) }
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestPriceRequestReturnsSheet(t *testing.T) {
	conn := dialWS(t, newTestServer(t))

	require.NoError(t, conn.WriteJSON(PriceRequest{
		ID: "r1",
		Fixture: quoting.Fixture{
			League: "epl", HomeTeam: "Arsenal", AwayTeam: "Everton",
			HomeRating: 1850, AwayRating: 1600,
		},
	}))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	env, sheet, err := UnmarshalReply(msg)
	require.NoError(t, err)

	assert.Equal(t, TypeSheet, env.Type)
	assert.Equal(t, "r1", env.ID)
	assert.Equal(t, "Arsenal", sheet.Fixture.HomeTeam)
	assert.Greater(t, sheet.Outcome.Home, sheet.Outcome.Away)
	assert.InDelta(t, 1.0, sheet.Outcome.Sum(), 1e-9)

	m, ok := sheet.Market(quoting.MarketMatchResult)
	require.True(t, ok)
	assert.InDelta(t, 1.05, m.Overround(), 1e-6)
}

func TestInvalidRequestsReturnErrors(t *testing.T) {
	conn := dialWS(t, newTestServer(t))

	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"not json", `{"fixture":`, "decode request"},
		{"missing league", `{"id":"a","fixture":{"home_team":"X"}}`, "invalid request"},
		{"unknown league", `{"id":"b","fixture":{"league":"Serie Z"}}`, "unknown league"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)))
			_, msg, err := conn.ReadMessage()
			require.NoError(t, err)

			var env Envelope
			require.NoError(t, json.Unmarshal(msg, &env))
			assert.Equal(t, TypeError, env.Type)

			_, _, err = UnmarshalReply(msg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClientRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	addr := strings.TrimPrefix(ts.URL, "http://")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	sheet, err := c.Price(ctx, quoting.Fixture{League: "Premier League", HomeRating: 1600, AwayRating: 1600})
	require.NoError(t, err)
	assert.InDelta(t, sheet.Outcome.Home+sheet.Outcome.Draw+sheet.Outcome.Away, 1.0, 1e-9)

	_, err = c.Price(ctx, quoting.Fixture{League: "nowhere"})
	require.Error(t, err)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fairline_ws_clients")
}
