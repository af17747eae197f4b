// Package server exposes one dashboard session over a websocket: sink
// replaces and patches stream out to every connected client, selection
// messages stream in and are marshaled onto the session's update loop.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zibamira/CTCoral-CoDA/errors"
	"github.com/zibamira/CTCoral-CoDA/render"
	"github.com/zibamira/CTCoral-CoDA/session"
)

// Server fans the session's render sinks out to websocket clients.
type Server struct {
	app    *session.Application
	logger *zap.SugaredLogger
	port   int

	upgrader websocket.Upgrader

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New wires a server to the session. The sink observers are registered
// here; broadcasting starts with Run.
func New(logger *zap.SugaredLogger, app *session.Application, port int) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:    app,
		logger: logger,
		port:   port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard serves its own UI; same-origin only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.observeSink(app.VertexSink())
	s.observeSink(app.EdgeSink())
	return s
}

// observeSink forwards sink changes to all clients.
func (s *Server) observeSink(sink *render.Source) {
	sink.OnReplace(func() {
		s.Broadcast(replaceMessage(sink))
	})
	sink.OnPatch(func(column string) {
		s.Broadcast(patchMessage(sink, column))
	})
	sink.OnSelectionChange(func(indices []int) {
		s.Broadcast(SelectionMessage{
			Type:    "selection",
			Sink:    sink.Name(),
			Indices: indices,
		})
	})
}

// Broadcast queues a message to every connected client. Clients with a full
// send channel are skipped; the next replace resynchronizes them.
func (s *Server) Broadcast(msg any) int {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- msg:
			sent++
		default:
			s.logger.Debugw("client send buffer full, dropping message", "client_id", client.id)
		}
	}
	return sent
}

// Run serves HTTP until the context ends.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/menus", s.handleMenus)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientLoop()
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.ctx.Done():
		}
		shutdownCtx, release := context.WithTimeout(context.Background(), 5*time.Second)
		defer release()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Infow("serving dashboard", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the server and disconnects all clients.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

// clientLoop owns the client set.
func (s *Server) clientLoop() {
	for {
		select {
		case <-s.ctx.Done():
			s.mu.Lock()
			for client := range s.clients {
				close(client.send)
				delete(s.clients, client)
			}
			s.mu.Unlock()
			return
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			n := len(s.clients)
			s.mu.Unlock()
			s.logger.Infow("client connected", "client_id", client.id, "clients", n)

			// Late joiners get the current sink state immediately.
			client.send <- replaceMessage(s.app.VertexSink())
			client.send <- replaceMessage(s.app.EdgeSink())
		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			n := len(s.clients)
			s.mu.Unlock()
			s.logger.Infow("client disconnected", "client_id", client.id, "clients", n)
		}
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(s, conn)
	s.register <- client

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	vertices, edges := s.app.Status()
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","vertices":%q,"edges":%q}`, vertices, edges)
}

// handleMenus serves the column menus of the mapping controls, consumed by
// the UI's color and marker dropdowns.
func (s *Server) handleMenus(w http.ResponseWriter, r *http.Request) {
	color, marker, edgeColor := s.app.Menus()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"color":      color,
		"marker":     marker,
		"edge_color": edgeColor,
	})
}
