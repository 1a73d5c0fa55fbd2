package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

type stubStore struct {
	drepo.Storage
}

func (s *stubStore) QuerySignals(ctx context.Context, f drepo.SignalFilter) ([]*models.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []*models.Signal{{ID: "sig_1", Platform: models.PlatformTwitter, Kind: models.KindSocial}}, nil
}

func (s *stubStore) QueryMatches(ctx context.Context, f drepo.MatchFilter) ([]*models.StrategicMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []*models.StrategicMatch{{ID: "match_1", PrimaryProduct: "smartphone"}}, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordIngested(string, int)         {}
func (stubMetrics) RecordFallback(string)              {}
func (stubMetrics) RecordError(string)                 {}
func (stubMetrics) RecordFetchLatency(string, float64) {}
func (stubMetrics) SetWebsocketClients(int)            {}

func dialHub(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	h := NewHub(&stubStore{}, stubMetrics{}, log)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	e := echo.New()
	e.GET("/ws", h.Handler)
	srv := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		cancel()
		t.Fatalf("dial: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
		srv.Close()
		cancel()
	}
}

func readFrame(t *testing.T, conn *websocket.Conn, wantType string) Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	_ = conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if env.Type == wantType {
			return env
		}
	}
	t.Fatalf("no %s frame before deadline", wantType)
	return Envelope{}
}

func TestHandlerSendsInitialSnapshot(t *testing.T) {
	conn, done := dialHub(t)
	defer done()

	env := readFrame(t, conn, "initial_data")
	if env.Signals == nil {
		t.Error("initial_data missing signals")
	}
	if env.Matches == nil {
		t.Error("initial_data missing matches")
	}
}

func TestClientRequestsAnswerAfterHandlerReturns(t *testing.T) {
	conn, done := dialHub(t)
	defer done()

	readFrame(t, conn, "initial_data")

	// The HTTP handler has returned by now; queries must still succeed.
	if err := conn.WriteJSON(clientRequest{Type: "get_signals", Limit: "10"}); err != nil {
		t.Fatalf("write get_signals: %v", err)
	}
	env := readFrame(t, conn, "signals_update")
	if env.Data == nil {
		t.Error("signals_update missing data")
	}

	if err := conn.WriteJSON(clientRequest{Type: "get_matches"}); err != nil {
		t.Fatalf("write get_matches: %v", err)
	}
	env = readFrame(t, conn, "matches_update")
	if env.Data == nil {
		t.Error("matches_update missing data")
	}
}
