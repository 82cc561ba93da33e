// Package requests is an HTTP client built around one idea: all the loose
// options a request can carry are resolved once, up front, into an
// immutable configuration the rest of the pipeline trusts.
//
// One-shot helpers cover the simple cases:
//
//	res, err := requests.Get(ctx, "http://example.com", nil)
//
// A Session reuses connections across requests with shared options:
//
//	s, err := requests.NewSession(&request.Options{
//		Auth: request.Basic{User: "user", Pass: "pass"},
//	})
//	res, err := s.Get(ctx, "http://example.com/me")
package requests

import (
	"context"
	"net/http"

	"github.com/zhucebuliaopx/requests/client"
	"github.com/zhucebuliaopx/requests/request"
)

// Do resolves o and sends one request. Every call builds a fresh client,
// so nothing is shared between calls; use a Session to reuse connections.
func Do(ctx context.Context, method, url string, o *request.Options) (*http.Response, error) {
	c, err := client.New(o)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, method, url)
}

func Get(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodGet, url, o)
}

func Post(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodPost, url, o)
}

func Put(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodPut, url, o)
}

func Patch(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodPatch, url, o)
}

func Delete(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodDelete, url, o)
}

func Head(ctx context.Context, url string, o *request.Options) (*http.Response, error) {
	return Do(ctx, http.MethodHead, url, o)
}

// Session is a client with its options resolved once, kept around to reuse
// connections and cookies across requests.
type Session struct {
	c *client.Client
}

// NewSession resolves o into a session. Mutating o afterwards does not
// affect the session.
func NewSession(o *request.Options, opts ...client.Option) (*Session, error) {
	c, err := client.New(o, opts...)
	if err != nil {
		return nil, err
	}
	return &Session{c: c}, nil
}

// Config exposes the session's resolved configuration, read-only by
// convention.
func (s *Session) Config() *request.Config {
	return s.c.Config
}

func (s *Session) Do(ctx context.Context, method, url string) (*http.Response, error) {
	return s.c.Do(ctx, method, url)
}

func (s *Session) Get(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodGet, url)
}

func (s *Session) Post(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodPost, url)
}

func (s *Session) Put(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodPut, url)
}

func (s *Session) Patch(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodPatch, url)
}

func (s *Session) Delete(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodDelete, url)
}

func (s *Session) Head(ctx context.Context, url string) (*http.Response, error) {
	return s.c.Do(ctx, http.MethodHead, url)
}
