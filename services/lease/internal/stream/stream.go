// Package stream bridges the registry event bus onto websocket clients so
// the presentation layer can re-render on lease changes.
package stream

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/happypapa636/RentChain/pkg/registry"
)

const writeTimeout = 10 * time.Second

type Server struct {
	reg      *registry.Registry
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(reg *registry.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		reg: reg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler upgrades the connection and forwards registry events as JSON
// frames until the client goes away.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		events, cancel := s.reg.Subscribe()
		defer cancel()

		// Drain reads so close frames are processed; the stream is one-way.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		for ev := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug("event stream closed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}
