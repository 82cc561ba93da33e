package request

import (
	"crypto/tls"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/zhucebuliaopx/requests/header"
)

// Built-in header values. A caller supplied value always wins, even an
// empty one.
const (
	DefaultUserAgent = "resty-requests"
	DefaultAccept    = "*/*"
)

// DefaultTimeouts is the connect, send, read triple applied when the
// options carry no timeouts at all.
var DefaultTimeouts = [3]time.Duration{
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// DefaultRedirectMaxTimes bounds redirect following when redirects are
// enabled without an explicit limit.
const DefaultRedirectMaxTimes = 10

// Config is the resolved form of Options. Every field is owned by the
// config alone; sharing anything with the options would let a caller
// mutate an in-flight request.
type Config struct {
	Timeouts []time.Duration
	Version  Version
	Headers  *header.Dict

	AllowRedirects   bool
	RedirectMaxTimes int

	// Auth is the resolved authorization header value, empty when the
	// options carried no credential.
	Auth string

	Body  any
	JSON  any
	Files []File

	Stream         bool
	UseDefaultType bool

	Proxies map[string]string
	Cookies map[string]string

	SSL *tls.Config

	ErrorFilter ErrorFilter
	Hooks       *Hooks
}

// Build resolves o into a fresh Config. A nil o resolves to pure defaults.
// The only fatal input is a header name that cannot be normalized;
// everything else is taken as given.
func Build(o *Options) (*Config, error) {
	if o == nil {
		o = &Options{}
	}

	cfg := &Config{
		AllowRedirects: o.AllowRedirects,
		Body:           o.Body,
		JSON:           o.JSON,
		Files:          slices.Clone(o.Files),
		Stream:         o.Stream == nil || *o.Stream,
		UseDefaultType: o.UseDefaultType == nil || *o.UseDefaultType,
		Proxies:        maps.Clone(o.Proxies),
		Cookies:        maps.Clone(o.Cookies),
		ErrorFilter:    o.ErrorFilter,
	}

	if o.Timeouts == nil {
		cfg.Timeouts = slices.Clone(DefaultTimeouts[:])
	} else {
		cfg.Timeouts = slices.Clone(o.Timeouts)
	}

	switch {
	case o.HTTP10:
		cfg.Version = HTTP10
	case o.HTTP2:
		cfg.Version = HTTP2
	default:
		cfg.Version = HTTP11
	}

	h := header.New(header.Normalize, len(o.Headers)+2)
	for k, v := range o.Headers {
		nk, err := header.Normalize(k)
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", k, err)
		}
		h.Set(nk, v)
	}
	if !h.Has("accept") {
		h.Set("accept", DefaultAccept)
	}
	if !h.Has("user-agent") {
		h.Set("user-agent", DefaultUserAgent)
	}
	cfg.Headers = h

	if o.AllowRedirects {
		n := DefaultRedirectMaxTimes
		if o.RedirectMaxTimes != nil {
			n = *o.RedirectMaxTimes
		}
		if n < 1 {
			n = 1
		}
		cfg.RedirectMaxTimes = n
	}

	if o.Auth != nil {
		cfg.Auth = o.Auth.header()
	}

	if o.SSL != nil {
		cfg.SSL = o.SSL.Clone()
	}

	if o.Hooks != nil {
		hooks := *o.Hooks
		cfg.Hooks = &hooks
	}

	return cfg, nil
}

// ConnectTimeout returns the first timeout of the triple, falling back to
// the default when the configured slice is shorter.
func (c *Config) ConnectTimeout() time.Duration { return c.timeoutAt(0) }

// SendTimeout returns the second timeout of the triple.
func (c *Config) SendTimeout() time.Duration { return c.timeoutAt(1) }

// ReadTimeout returns the third timeout of the triple.
func (c *Config) ReadTimeout() time.Duration { return c.timeoutAt(2) }

func (c *Config) timeoutAt(i int) time.Duration {
	if i < len(c.Timeouts) {
		return c.Timeouts[i]
	}
	return DefaultTimeouts[i]
}

// TotalTimeout is the whole-exchange budget, the sum of the triple.
func (c *Config) TotalTimeout() time.Duration {
	return c.ConnectTimeout() + c.SendTimeout() + c.ReadTimeout()
}
