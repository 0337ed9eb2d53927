package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charleschow/fairline/internal/core/quoting"
	"github.com/charleschow/fairline/internal/telemetry"
)

const (
	clientSendBuf = 256
	maxFrameBytes = 64 << 10
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Pricer prices one fixture. *quoting.Quoter satisfies it.
type Pricer interface {
	Price(ctx context.Context, f quoting.Fixture) (quoting.Sheet, error)
}

type pricingClient struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	cancel context.CancelFunc
}

// Server answers PriceRequests over WebSocket and exposes /metrics and /healthz.
type Server struct {
	pricer   Pricer
	validate *validator.Validate
	now      func() time.Time

	mu      sync.Mutex
	clients map[*pricingClient]struct{}
}

func NewServer(pricer Pricer) *Server {
	return &Server{
		pricer:   pricer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		clients:  make(map[*pricingClient]struct{}),
	}
}

// Handler returns the mux serving /ws, /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(telemetry.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// HandleWS is the HTTP handler for WebSocket upgrade requests.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("server: upgrade failed: %v", err)
		return
	}

	// The request context ends when this handler returns, so each client
	// gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	c := &pricingClient{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, clientSendBuf),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	telemetry.Metrics.WSClients.Inc()

	telemetry.Plainf("Server: Client Connected [%s]", c.remote)

	go s.writePump(c)
	go s.readPump(ctx, c)
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// and closes the connection.
func (s *Server) writePump(c *pricingClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("server: write error client=%s: %v", c.remote, err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads PriceRequests and answers each in order.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(ctx context.Context, c *pricingClient) {
	defer func() {
		c.cancel()
		close(c.done)
	}()

	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		telemetry.Metrics.WSRequests.Inc()

		reply := s.answer(ctx, msg)
		if reply == nil {
			continue
		}
		select {
		case c.send <- reply:
		default:
			telemetry.Warnf("server: dropping reply for slow client=%s", c.remote)
		}
	}
}

// answer prices one raw frame and returns the encoded reply.
func (s *Server) answer(ctx context.Context, msg []byte) []byte {
	var req PriceRequest
	var reply []byte
	var err error

	if err = json.Unmarshal(msg, &req); err != nil {
		err = fmt.Errorf("decode request: %w", err)
	} else if err = s.validate.Struct(req); err != nil {
		err = fmt.Errorf("invalid request: %w", err)
	}

	if err == nil {
		var sheet quoting.Sheet
		sheet, err = s.pricer.Price(ctx, req.Fixture)
		if err == nil {
			reply, err = MarshalSheet(req.ID, sheet, s.now())
		}
	}

	if err != nil {
		telemetry.Debugf("server: request id=%s failed: %v", req.ID, err)
		reply, err = MarshalError(req.ID, err, s.now())
		if err != nil {
			telemetry.Warnf("server: marshal error reply: %v", err)
			return nil
		}
	}
	return reply
}

func (s *Server) removeClient(c *pricingClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if !ok {
		return
	}
	telemetry.Metrics.WSClients.Dec()
	telemetry.Plainf("Server: Client Disconnected [%s]", c.remote)
}

// closeClients drops every open connection; their pumps exit on the
// resulting read/write errors.
func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.cancel()
		c.conn.Close()
	}
}

// ListenAndServe serves Handler on port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Plainf("server: listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeClients()
	if errors.Is(<-errCh, http.ErrServerClosed) && err == nil {
		telemetry.Infof("server: stopped")
		return nil
	}
	return err
}
