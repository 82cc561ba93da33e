package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taybart/log"
)

func (s *Server) Routes(server *http.Server) {
	s.Router.HandleFunc("/__quit__", s.HandleQuit(server))
	s.Router.HandleFunc("/ws", s.HandleWSEcho())

	s.Router.HandleFunc("/echo", s.middleware(gzipHandler(s.HandleEcho())))
	s.Router.HandleFunc("/redirect/{n}", s.middleware(s.HandleRedirect()))
	s.Router.HandleFunc("/basic-auth/{user}/{pass}", s.middleware(s.HandleBasicAuth()))
	s.Router.HandleFunc("/delay/{dur}", s.middleware(gzipHandler(s.HandleDelay())))
}

// middleware wraps h with response headers from the config and, unless
// quiet, request logging.
func (s *Server) middleware(h http.HandlerFunc) http.HandlerFunc {
	withHeaders := func(w http.ResponseWriter, r *http.Request) {
		for k, v := range s.Config.Headers {
			w.Header().Add(k, v)
		}
		h(w, r)
	}
	if s.Config.Quiet {
		return withHeaders
	}
	return log.Middleware(withHeaders)
}

func (s *Server) HandleQuit(server *http.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		log.Warn("got signal on __quit__, stopping...")
		w.WriteHeader(http.StatusOK)

		go func() {
			time.Sleep(500 * time.Millisecond)
			server.Shutdown(context.Background())
		}()
	}
}

// Echo is what /echo reflects back at the caller.
type Echo struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

func (s *Server) HandleEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		headers := map[string]string{}
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Echo{
			Method:  r.Method,
			URL:     r.URL.String(),
			Headers: headers,
			Body:    string(body),
		})
	}
}

// HandleRedirect bounces the caller down a chain: /redirect/3 points at
// /redirect/2 and so on until /redirect/0 answers 200.
func (s *Server) HandleRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.PathValue("n"))
		if err != nil || n < 0 {
			http.Error(w, "redirect count must be a non-negative number", http.StatusBadRequest)
			return
		}
		if n == 0 {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"status": "ok"}`)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/redirect/%d", n-1), http.StatusFound)
	}
}

func (s *Server) HandleBasicAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != r.PathValue("user") || pass != r.PathValue("pass") {
			w.Header().Set("WWW-Authenticate", `Basic realm="test"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"authenticated": true, "user": %q}`, user)
	}
}

// HandleDelay waits the requested duration before answering, for timeout
// tests. Durations over the server write timeout are rejected.
func (s *Server) HandleDelay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dur, err := time.ParseDuration(r.PathValue("dur"))
		if err != nil {
			http.Error(w, "bad duration", http.StatusBadRequest)
			return
		}
		if dur > httpTimeout {
			http.Error(w, "delay exceeds server timeout", http.StatusBadRequest)
			return
		}
		time.Sleep(dur)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"delayed": %q}`, dur)
	}
}

func (s *Server) HandleWSEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error(err)
			return
		}
		defer conn.Close()
		for {
			messageType, p, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, p); err != nil {
				log.Error(err)
				return
			}
		}
	}
}
