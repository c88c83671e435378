// Package httpserver builds the http.Server the service runs under.
package httpserver

import (
	"net/http"
	"time"
)

// Connection timeouts. WriteTimeout stays above the request timeout
// middleware's budget so the middleware, not the server, cuts off slow
// handlers and the client still gets an error body.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 45 * time.Second
	idleTimeout       = 60 * time.Second
)

// New builds the server for addr. Lifecycle stays with the caller.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
