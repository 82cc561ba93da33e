// Package server provides a local http server for exercising the client:
// echo, redirect chains, basic auth, delays and a websocket echo.
package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

const (
	httpTimeout = 15 * time.Second
)

type Server struct {
	Router *http.ServeMux
	Config Config
}

type Config struct {
	Addr string
	// Quiet suppresses request logging.
	Quiet bool
	// Origins allowed for cross origin requests. Empty disables CORS
	// handling entirely.
	Origins []string
	// Headers are added to every response.
	Headers map[string]string
}

func New(c Config) *http.Server {
	s := Server{
		Router: http.NewServeMux(),
		Config: c,
	}

	server := &http.Server{
		Addr:         c.Addr,
		WriteTimeout: httpTimeout,
		ReadTimeout:  httpTimeout,
	}
	// the quit route needs the server to shut down
	s.Routes(server)

	var handler http.Handler = s.Router
	if len(c.Origins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: c.Origins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowedHeaders: []string{"*"},
		}).Handler(handler)
	}
	server.Handler = handler
	return server
}
