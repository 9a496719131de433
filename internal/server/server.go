// Package server streams a recorded run to browser clients over a
// websocket. Every client owns its own playback cursor.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/export"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/physics"
	"github.com/san-kum/spheresim/internal/storage"
	"github.com/san-kum/spheresim/internal/viz"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
	maxMessage = 4096
)

// Message types
const (
	MsgTypeMeta   = "meta"
	MsgTypeFrame  = "frame"
	MsgTypeStep   = "step"
	MsgTypeSample = "sample"
	MsgTypeError  = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type FrameData struct {
	Index int `json:"index"`
}

type StepData struct {
	Delta int `json:"delta"`
}

type MetaData struct {
	RunID         string  `json:"run_id,omitempty"`
	Model         string  `json:"model,omitempty"`
	Radius        float64 `json:"radius"`
	Frames        int     `json:"frames"`
	Dt            float64 `json:"dt"`
	CriticalSpeed float64 `json:"critical_speed"`
}

type SampleData struct {
	Index    int        `json:"index"`
	Time     float64    `json:"time"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Speed    float64    `json:"speed"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// isValidOrigin accepts same-host and localhost origins, and clients that
// send no origin at all.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == u.Host {
		return true
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// Server serves one recorded trajectory.
type Server struct {
	run    storage.RunMetadata
	traj   dynamo.Trajectory
	logger *slog.Logger

	mu      sync.Mutex
	clients map[int]*Client
	nextID  int
}

func New(run storage.RunMetadata, traj dynamo.Trajectory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if run.Dt <= 0 {
		run.Dt = physics.DefaultTuning().Dt
	}
	if run.Gravity <= 0 {
		run.Gravity = physics.StandardGravity
	}
	return &Server{
		run:     run,
		traj:    traj,
		logger:  logger,
		clients: make(map[int]*Client),
	}
}

func (s *Server) Meta() MetaData {
	return MetaData{
		RunID:         s.run.ID,
		Model:         s.run.Model,
		Radius:        s.run.Radius,
		Frames:        s.traj.Len(),
		Dt:            s.run.Dt,
		CriticalSpeed: physics.Sphere{Radius: s.run.Radius, Gravity: s.run.Gravity}.CriticalSpeed(),
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/api/trajectory", s.HandleTrajectory)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("playback server listening", "addr", addr, "run_id", s.run.ID, "frames", s.traj.Len())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"frames":  s.traj.Len(),
		"clients": s.Clients(),
	})
}

func (s *Server) HandleTrajectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := export.WriteJSON(w, s.run, s.traj); err != nil {
		s.logger.Error("write trajectory", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.nextID++
	client := &Client{
		ID:     s.nextID,
		conn:   conn,
		send:   make(chan ServerMessage, sendBuffer),
		server: s,
		pb:     viz.NewPlayback(s.traj, s.run.Dt),
	}
	s.clients[client.ID] = client
	s.mu.Unlock()

	s.logger.Debug("client connected", "client", client.ID, "remote", r.RemoteAddr)
	client.send <- ServerMessage{Type: MsgTypeMeta, Data: s.Meta()}

	go client.writePump()
	go client.readPump()
}

func (s *Server) unregister(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		delete(s.clients, c.ID)
		close(c.send)
		s.logger.Debug("client disconnected", "client", c.ID)
	}
}

// Client is one websocket connection.
type Client struct {
	ID     int
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
	pb     *viz.Playback
}

func (c *Client) readPump() {
	defer func() {
		c.server.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket read", "client", c.ID, "error", err)
			}
			return
		}
		c.reply(c.handleMessage(msg))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply queues msg, dropping it when the client is not keeping up.
func (c *Client) reply(msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		c.server.logger.Warn("send buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}

func errorMessage(text string) ServerMessage {
	return ServerMessage{Type: MsgTypeError, Data: ErrorData{Message: text}}
}

// handleMessage moves the client's cursor and returns the reply.
func (c *Client) handleMessage(msg ClientMessage) ServerMessage {
	if !c.pb.Enabled() {
		return errorMessage("trajectory has no samples")
	}

	switch msg.Type {
	case MsgTypeFrame:
		var d FrameData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return errorMessage("bad frame message: " + err.Error())
		}
		c.pb.Seek(d.Index)
	case MsgTypeStep:
		var d StepData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return errorMessage("bad step message: " + err.Error())
		}
		c.pb.Step(d.Delta)
	default:
		return errorMessage("unknown message type " + strings.TrimSpace(msg.Type))
	}
	return c.sample()
}

func (c *Client) sample() ServerMessage {
	s, _ := c.pb.Current()
	return ServerMessage{Type: MsgTypeSample, Data: SampleData{
		Index:    c.pb.Frame(),
		Time:     c.pb.Time(),
		Position: [3]float64(s.Position),
		Velocity: [3]float64(s.Velocity),
		Speed:    s.Speed(),
	}}
}
