// Package client executes requests described by a resolved configuration.
// It owns the transport wiring (timeouts, proxies, TLS, protocol version,
// redirect policy), tracks the connection state of each exchange, and runs
// the configured lua hooks around it.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptrace"
	"net/url"
	"time"

	"github.com/taybart/log"
	"golang.org/x/net/http2"

	"github.com/zhucebuliaopx/requests/hook"
	"github.com/zhucebuliaopx/requests/request"
)

// Client runs requests against one resolved configuration. Keep a Client
// around to reuse its connections; one-shot helpers live in the root
// package.
type Client struct {
	http    *http.Client
	metrics *Metrics
	Config  *request.Config
}

// Option adjusts a Client at construction.
type Option func(*Client)

// WithMetrics attaches a collector; a nil collector is a no-op.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the built transport wholesale. The caller then
// owns redirect policy, timeouts and protocol selection.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New resolves o and builds a client for it. Options are resolved exactly
// once, here; mutating o afterwards has no effect on the client.
func New(o *request.Options, opts ...Option) (*Client, error) {
	cfg, err := request.Build(o)
	if err != nil {
		return nil, err
	}
	c := &Client{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		transport := newTransport(cfg)
		if cfg.Version == request.HTTP2 {
			if err := http2.ConfigureTransport(transport); err != nil {
				return nil, err
			}
		}
		c.http = &http.Client{
			Transport:     transport,
			Jar:           jar,
			Timeout:       cfg.TotalTimeout(),
			CheckRedirect: redirectPolicy(cfg),
		}
	}
	return c, nil
}

// Do sends one request. The method and URL are per-call; everything else
// comes from the client's configuration. When the config streams, the
// response body is live and the caller must close it; otherwise the body is
// fully read, closed, and handed back as a replayable buffer.
func (c *Client) Do(ctx context.Context, method, rawurl string) (*http.Response, error) {
	start := time.Now()
	t := newTracker(c.Config.ErrorFilter)

	p, err := encodePayload(c.Config)
	if err != nil {
		return nil, t.fail(err)
	}
	t.set(request.StateReady)

	body := p.reader
	if body == nil && p.raw != nil {
		body = bytes.NewReader(p.raw)
	}
	ctx = httptrace.WithClientTrace(ctx, t.trace(len(c.Config.Proxies) > 0))
	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return nil, t.fail(err)
	}
	c.applyHeaders(req, p)

	if c.Config.Hooks != nil {
		if err := c.runBeforeHook(req, p); err != nil {
			return nil, t.fail(err)
		}
	}

	c.metrics.start()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.finish()
		c.metrics.failed(method, t.current())
		return nil, t.fail(err)
	}
	t.set(request.StateRecvBody)

	if !c.Config.Stream {
		buf, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			c.metrics.finish()
			c.metrics.failed(method, t.current())
			ferr := t.fail(err)
			t.set(request.StateClose)
			return nil, ferr
		}
		t.set(request.StateClose)
		res.Body = io.NopCloser(bytes.NewReader(buf))
		res.ContentLength = int64(len(buf))
	}

	c.metrics.finish()
	c.metrics.observe(method, res.StatusCode, time.Since(start))

	if c.Config.Hooks != nil {
		if err := c.runAfterHook(req, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// applyHeaders serializes the header dict onto the wire request and adds
// the resolved credential, content type and cookies. Multipart types are
// always applied since the boundary lives in them; other encoder defaults
// honor the use_default_type gate. Nothing here shadows a caller value.
func (c *Client) applyHeaders(req *http.Request, p payload) {
	for k, v := range c.Config.Headers.All() {
		req.Header.Set(k, v)
	}
	if c.Config.Auth != "" && !c.Config.Headers.Has("authorization") {
		req.Header.Set("Authorization", c.Config.Auth)
	}
	if p.ctype != "" && !c.Config.Headers.Has("content-type") {
		if p.forced || c.Config.UseDefaultType {
			req.Header.Set("Content-Type", p.ctype)
		}
	}
	for n, v := range c.Config.Cookies {
		req.AddCookie(&http.Cookie{Name: n, Value: v})
	}
}

func (c *Client) runBeforeHook(req *http.Request, p payload) error {
	o, err := hook.Before(c.Config.Hooks.Before, req, p.raw)
	if err != nil || o == nil {
		return err
	}
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}
	if o.Body != "" {
		raw := []byte(o.Body)
		req.Body = io.NopCloser(bytes.NewReader(raw))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(raw)), nil
		}
		req.ContentLength = int64(len(raw))
	}
	return nil
}

// runAfterHook lets the script inspect the exchange and veto it. Streamed
// responses reach the script without a body; buffered ones are rewound
// afterwards so the caller still gets a readable body.
func (c *Client) runAfterHook(req *http.Request, res *http.Response) error {
	var buf []byte
	if !c.Config.Stream {
		buf, _ = io.ReadAll(res.Body)
	}
	result, exports, err := hook.After(c.Config.Hooks.After, req, res, buf)
	if !c.Config.Stream {
		res.Body = io.NopCloser(bytes.NewReader(buf))
	}
	if err != nil {
		return err
	}
	if result != "" {
		log.Debugf("after hook: %s\n", result)
	}
	for k, v := range exports {
		log.Debugf("export %s=%s\n", k, v)
	}
	return nil
}

func newTransport(cfg *request.Config) *http.Transport {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout()}
	t := &http.Transport{
		Proxy:                 proxyFunc(cfg.Proxies),
		DialContext:           dialer.DialContext,
		TLSClientConfig:       cfg.SSL,
		TLSHandshakeTimeout:   cfg.ConnectTimeout(),
		ResponseHeaderTimeout: cfg.ReadTimeout(),
	}
	if cfg.Version == request.HTTP10 {
		// closest the transport gets to 1.0 semantics
		t.DisableKeepAlives = true
	}
	return t
}

// proxyFunc maps URL schemes to the configured proxies, falling back to the
// environment when none are configured.
func proxyFunc(proxies map[string]string) func(*http.Request) (*url.URL, error) {
	if len(proxies) == 0 {
		return http.ProxyFromEnvironment
	}
	return func(r *http.Request) (*url.URL, error) {
		if raw, ok := proxies[r.URL.Scheme]; ok {
			return url.Parse(raw)
		}
		return nil, nil
	}
}

func redirectPolicy(cfg *request.Config) func(*http.Request, []*http.Request) error {
	if !cfg.AllowRedirects {
		return func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	bound := cfg.RedirectMaxTimes
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= bound {
			return fmt.Errorf("stopped after %d redirects", bound)
		}
		return nil
	}
}
