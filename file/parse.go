// Package file parses .rest files: HCL documents describing requests to
// run. A file holds an optional config block with shared defaults, locals,
// and any number of labeled request blocks. Parsing resolves every block
// into request options; execution lives in run.go.
package file

import (
	"fmt"
	"maps"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/zhucebuliaopx/requests/header"
	"github.com/zhucebuliaopx/requests/kv"
	"github.com/zhucebuliaopx/requests/request"
)

type Root struct {
	Locals []*struct {
		Body hcl.Body `hcl:",remain"`
	} `hcl:"locals,block"`

	Config *struct {
		Body hcl.Body `hcl:",remain"`
	} `hcl:"config,block"`

	Requests []*struct {
		Label string   `hcl:"label,label"`
		Body  hcl.Body `hcl:",remain"`
	} `hcl:"request,block"`
}

// Config is the file level config block. Its fields are fallbacks: a
// request block that sets the same thing wins.
type Config struct {
	UserAgent        string `hcl:"user_agent,optional"`
	AllowRedirects   bool   `hcl:"allow_redirects,optional"`
	RedirectMaxTimes *int   `hcl:"redirect_max_times,optional"`
	Stream           *bool  `hcl:"stream,optional"`
	UseDefaultType   *bool  `hcl:"use_default_type,optional"`
}

func DefaultConfig() Config {
	return Config{}
}

// Entry is one parsed request block. Simple attributes decode through
// gohcl tags; shape dependent ones (timeouts, auth, json, body) arrive in
// Remain and are resolved by ParseExtras.
type Entry struct {
	Label  string `hcl:"label,label"`
	URL    string `hcl:"url"`
	Method string `hcl:"method,optional"`

	Headers map[string]string `hcl:"headers,optional"`
	Query   map[string]string `hcl:"query,optional"`
	Cookies map[string]string `hcl:"cookies,optional"`
	Proxies map[string]string `hcl:"proxies,optional"`

	HTTP10 bool `hcl:"http10,optional"`
	HTTP2  bool `hcl:"http2,optional"`

	AllowRedirects   *bool `hcl:"allow_redirects,optional"`
	RedirectMaxTimes *int  `hcl:"redirect_max_times,optional"`
	Stream           *bool `hcl:"stream,optional"`
	UseDefaultType   *bool `hcl:"use_default_type,optional"`

	Delay  string `hcl:"delay,optional"`
	Expect int    `hcl:"expect,optional"`

	Hooks *struct {
		Before string `hcl:"before,optional"`
		After  string `hcl:"after,optional"`
	} `hcl:"hooks,block"`

	Files []struct {
		Label       string `hcl:"label,label"`
		Path        string `hcl:"path"`
		ContentType string `hcl:"content_type,optional"`
	} `hcl:"file,block"`

	Remain hcl.Attributes `hcl:",remain"`

	// resolved from Remain
	Timeouts []time.Duration
	Auth     request.Auth
	JSON     any
	Body     any
}

// ParseExtras resolves the attributes whose meaning depends on the shape
// of their value. timeouts is a list of millisecond numbers, auth either a
// literal credential string or a {user, pass} object, json any value, body
// a string sent raw or a container sent as a form.
func (e *Entry) ParseExtras(ctx *hcl.EvalContext) error {
	for name, attr := range e.Remain {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return fmt.Errorf("error evaluating %s: %w", name, diags)
		}
		switch name {
		case "timeouts":
			if !kv.IsSequence(val) {
				return fmt.Errorf("timeouts must be a list of milliseconds, got %s", val.Type().FriendlyName())
			}
			for it := val.ElementIterator(); it.Next(); {
				_, ms := it.Element()
				if ms.Type() != cty.Number {
					return fmt.Errorf("timeouts must be a list of milliseconds, got %s", ms.Type().FriendlyName())
				}
				n, _ := ms.AsBigFloat().Int64()
				e.Timeouts = append(e.Timeouts, time.Duration(n)*time.Millisecond)
			}
		case "auth":
			auth, err := parseAuth(val)
			if err != nil {
				return fmt.Errorf("request %s: %w", e.Label, err)
			}
			e.Auth = auth
		case "json":
			e.JSON = val
		case "body":
			if val.Type() == cty.String {
				e.Body = val.AsString()
				continue
			}
			e.Body = val
		default:
			return fmt.Errorf("request %s: unknown attribute %s", e.Label, name)
		}
	}
	return nil
}

// parseAuth turns the auth attribute into a credential. A string is taken
// literally; an object needs user and pass.
func parseAuth(val cty.Value) (request.Auth, error) {
	switch kv.KindOf(val) {
	case kv.String:
		return request.Token(val.AsString()), nil
	case kv.Mapping:
		t := val.Type()
		if !t.HasAttribute("user") || !t.HasAttribute("pass") {
			return nil, fmt.Errorf("auth object needs user and pass")
		}
		return request.Basic{
			User: val.GetAttr("user").AsString(),
			Pass: val.GetAttr("pass").AsString(),
		}, nil
	}
	return nil, fmt.Errorf("auth must be a string or a {user, pass} object, got %s", val.Type().FriendlyName())
}

// hasHeader reports whether any key of headers resolves to canonical. Plain
// map lookup is not enough here: an entry spelling like User-Agent names the
// same field as user-agent once normalized.
func hasHeader(headers map[string]string, canonical string) bool {
	for k := range headers {
		if nk, err := header.Normalize(k); err == nil && nk == canonical {
			return true
		}
	}
	return false
}

// Options resolves the entry against the file config into the options the
// builder consumes.
func (e *Entry) Options(config Config) *request.Options {
	o := &request.Options{
		Timeouts: e.Timeouts,
		HTTP10:   e.HTTP10,
		HTTP2:    e.HTTP2,
		Headers:  e.Headers,
		Cookies:  e.Cookies,
		Proxies:  e.Proxies,
		JSON:     e.JSON,
		Body:     e.Body,
		Auth:     e.Auth,
	}
	if config.UserAgent != "" && !hasHeader(e.Headers, "user-agent") {
		// fresh map so the fallback never leaks into the entry
		headers := make(map[string]string, len(e.Headers)+1)
		maps.Copy(headers, e.Headers)
		headers["user-agent"] = config.UserAgent
		o.Headers = headers
	}
	if e.AllowRedirects != nil {
		o.AllowRedirects = *e.AllowRedirects
	} else {
		o.AllowRedirects = config.AllowRedirects
	}
	o.RedirectMaxTimes = e.RedirectMaxTimes
	if o.RedirectMaxTimes == nil {
		o.RedirectMaxTimes = config.RedirectMaxTimes
	}
	o.Stream = e.Stream
	if o.Stream == nil {
		o.Stream = config.Stream
	}
	o.UseDefaultType = e.UseDefaultType
	if o.UseDefaultType == nil {
		o.UseDefaultType = config.UseDefaultType
	}
	if e.Hooks != nil {
		o.Hooks = &request.Hooks{Before: e.Hooks.Before, After: e.Hooks.After}
	}
	for _, f := range e.Files {
		o.Files = append(o.Files, request.File{
			Label:       f.Label,
			Path:        f.Path,
			ContentType: f.ContentType,
		})
	}
	return o
}

// Parse reads and resolves filename. Entries come back in block order with
// unique labels.
func Parse(filename string) (Config, []Entry, error) {
	config := DefaultConfig()

	file, diags := read(filename)
	if diags.HasErrors() {
		writeDiags(map[string]*hcl.File{filename: file}, diags)
		return config, nil, diags
	}

	var root Root
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		writeDiags(map[string]*hcl.File{filename: file}, diags)
		return config, nil, diags
	}

	locals, err := decodeLocals(root)
	if err != nil {
		return config, nil, err
	}

	ctx := makeContext(locals)

	if root.Config != nil {
		if diags = gohcl.DecodeBody(root.Config.Body, ctx, &config); diags.HasErrors() {
			writeDiags(map[string]*hcl.File{filename: file}, diags)
			return config, nil, fmt.Errorf("error decoding HCL configuration: %w", diags)
		}
	}

	entries := []Entry{}
	labels := []string{}
	for _, block := range root.Requests {
		entry := Entry{Label: block.Label}
		if diags = gohcl.DecodeBody(block.Body, ctx, &entry); diags.HasErrors() {
			writeDiags(map[string]*hcl.File{filename: file}, diags)
			return config, nil, fmt.Errorf("error decoding HCL configuration: %w", diags)
		}
		for _, l := range labels {
			if l == entry.Label {
				return config, nil, fmt.Errorf("labels must be unique: %s", l)
			}
		}
		if err := entry.ParseExtras(ctx); err != nil {
			return config, nil, err
		}
		if entry.Method == "" {
			entry.Method = "GET"
		}
		if entry.URL == "" {
			return config, nil, fmt.Errorf("url is required for request: %s", entry.Label)
		}
		entries = append(entries, entry)
		labels = append(labels, entry.Label)
	}
	return config, entries, nil
}
