package server

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

func NewSocketAcceptor(sessionHolder *SessionHolder, config *Config, pipeline *Pipeline, stats *Stats, logger *Logger) func(http.ResponseWriter, *http.Request) {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientIP, clientPort := clientAddress(r, logger)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already answered the request with an error status.
			logger.Warnw("Websocket upgrade was failed", "error", errors.WithStack(err))
			return
		}

		s := NewSession(clientIP, clientPort, conn, config, sessionHolder, stats, logger)

		logger.Infow("New socket connection was established", "sessionID", s.ID().String(), "clientIP", s.ClientIP(), "clientPort", s.ClientPort())

		sessionHolder.add(s)

		// Consume blocks for the lifetime of the connection and hands every message to the pipeline.
		s.Consume(pipeline.handleSocketRequests)
	}
}

func clientAddress(r *http.Request, logger *Logger) (string, string) {
	clientAddr := ""
	if ips := r.Header.Get("x-forwarded-for"); len(ips) > 0 {
		clientAddr = strings.Split(ips, ",")[0]
	} else {
		clientAddr = r.RemoteAddr
	}

	clientAddr = strings.TrimSpace(clientAddr)
	if host, port, err := net.SplitHostPort(clientAddr); err == nil {
		return host, port
	} else if addrErr, ok := err.(*net.AddrError); ok && addrErr.Err == "missing port in address" {
		return clientAddr, ""
	} else {
		logger.Warnw("Could not extract client address from request.", "error", errors.WithStack(err))
	}
	return "", ""
}
