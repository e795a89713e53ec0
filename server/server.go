// Package server exposes the workbench over HTTP: project, drawing,
// requirement, and annotation resources as JSON, plus a WebSocket
// change feed that pushes mutation events to connected clients.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/calibrant/gdtbench/config"
	"github.com/calibrant/gdtbench/store"
)

// GdtServer serves the workbench API and fans mutation events out to
// WebSocket clients.
type GdtServer struct {
	store  *store.SQLStore
	cfg    *config.Config
	logger *zap.SugaredLogger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan Event
	mu         sync.RWMutex

	uploadLimiter *rateWindow

	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer wires a server over an opened store. The WebSocket hub does
// not run until Start (or startHub in tests) is called.
func NewServer(st *store.SQLStore, cfg *config.Config, logger *zap.SugaredLogger) *GdtServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &GdtServer{
		store:         st,
		cfg:           cfg,
		logger:        logger,
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		events:        make(chan Event, 64),
		uploadLimiter: newRateWindow(cfg.Uploads.RatePerMinute, time.Minute),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start runs the hub and blocks serving HTTP until Shutdown or a
// listener error.
func (s *GdtServer) Start() error {
	s.startHub()

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Infow("Server listening", "addr", addr, "db", s.cfg.Database.Path)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener, disconnects clients, and waits for
// the hub goroutine to drain.
func (s *GdtServer) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.cancel()

	s.mu.Lock()
	for client := range s.clients {
		client.close()
		delete(s.clients, client)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warnw("Shutdown timed out waiting for hub")
	}
	return err
}

// startHub runs the client registry and event fan-out loop.
func (s *GdtServer) startHub() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.ctx.Done():
				return
			case client := <-s.register:
				s.mu.Lock()
				s.clients[client] = true
				n := len(s.clients)
				s.mu.Unlock()
				s.logger.Debugw("Client connected", "client_id", client.id, "clients", n)
			case client := <-s.unregister:
				s.mu.Lock()
				if s.clients[client] {
					delete(s.clients, client)
					client.close()
				}
				n := len(s.clients)
				s.mu.Unlock()
				s.logger.Debugw("Client disconnected", "client_id", client.id, "clients", n)
			case ev := <-s.events:
				s.broadcastEvent(ev)
			}
		}
	}()
}
