// Package request resolves caller supplied options into the configuration a
// request runs with. Resolution happens once per request: defaults are
// filled in, header names are normalized, credentials are encoded, and the
// result is an independently owned Config that later mutation of the
// options cannot reach.
package request

import (
	"crypto/tls"
	"time"
)

// Options is the loosely populated input to Build. The zero value resolves
// to a config of pure defaults. Pointer fields distinguish "absent" from an
// explicit false or zero; the Bool and Int helpers build them inline.
type Options struct {
	// Timeouts holds the connect, send and read timeouts, in that order.
	// Nil means the defaults. Other lengths are carried as given and
	// consumers fall back to defaults positionally.
	Timeouts []time.Duration

	// HTTP10 and HTTP2 select the protocol version. HTTP10 wins when both
	// are set, otherwise HTTP/1.1 is used.
	HTTP10 bool
	HTTP2  bool

	// Headers are merged over the built-in defaults. Names are normalized
	// on insertion; a name that cannot be normalized fails the build. Two
	// keys that normalize to the same name (User-Agent and user_agent)
	// collapse into one entry, and which value survives follows map
	// iteration order; spell each header one way.
	Headers map[string]string

	// AllowRedirects enables following redirects, bounded by
	// RedirectMaxTimes. Nil means the default bound and values under one
	// are raised to one.
	AllowRedirects   bool
	RedirectMaxTimes *int

	// Auth is either a Token or a Basic credential. It resolves into the
	// authorization header value unless the caller already set one.
	Auth Auth

	// Body is the raw request payload, JSON a value to be JSON encoded,
	// Files a multipart upload set. They pass through untouched; the
	// consumer picks which one to encode.
	Body  any
	JSON  any
	Files []File

	// Stream controls whether the response body is left on the wire for
	// the caller to read. Defaults to true.
	Stream *bool

	// UseDefaultType controls whether an encoder chosen content type is
	// applied when the caller did not set one. Defaults to true.
	UseDefaultType *bool

	// Proxies maps URL schemes to proxy addresses. Cookies are sent with
	// the request. Both pass through copied but uninterpreted.
	Proxies map[string]string
	Cookies map[string]string

	// SSL overrides TLS settings for the request.
	SSL *tls.Config

	// ErrorFilter is invoked with transport failures and the connection
	// state they happened in.
	ErrorFilter ErrorFilter

	// Hooks carry scripts run around the exchange.
	Hooks *Hooks
}

// ErrorFilter receives a transport failure together with the connection
// state the request was in when it failed.
type ErrorFilter func(s State, err error)

// Hooks are scripts run around a request. Before runs after the request is
// assembled and may override headers or the body; After runs once the
// response is in.
type Hooks struct {
	Before string
	After  string
}

// File is one part of a multipart upload.
type File struct {
	// Label is the form field name.
	Label string
	// Path is read at send time.
	Path string
	// ContentType is optional; unset parts are sniffed by the writer.
	ContentType string
}

// Bool returns a pointer to v, for the tri-state option fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for the tri-state option fields.
func Int(v int) *int { return &v }
