package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/zhucebuliaopx/requests/kv"
	"github.com/zhucebuliaopx/requests/request"
)

// payload is an encoded request body. Either reader streams it, or raw
// holds it whole; ctype is the encoder's suggested content type, forced
// when it must go on the wire regardless of the default-type gate
// (multipart boundaries).
type payload struct {
	reader io.Reader
	raw    []byte
	ctype  string
	forced bool
}

// encodePayload picks the body source in fixed order: file uploads, then a
// JSON value, then the raw body.
func encodePayload(cfg *request.Config) (payload, error) {
	switch {
	case len(cfg.Files) > 0:
		return encodeFiles(cfg.Files)
	case cfg.JSON != nil:
		return encodeJSON(cfg.JSON)
	case cfg.Body != nil:
		return encodeBody(cfg.Body)
	}
	return payload{}, nil
}

// encodeFiles builds a multipart form, one part per file, read from disk at
// encode time.
func encodeFiles(files []request.File) (payload, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		if err := writeFilePart(writer, f); err != nil {
			return payload{}, err
		}
	}
	if err := writer.Close(); err != nil {
		return payload{}, err
	}
	return payload{raw: body.Bytes(), ctype: writer.FormDataContentType(), forced: true}, nil
}

func writeFilePart(writer *multipart.Writer, f request.File) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	var part io.Writer
	if f.ContentType == "" {
		part, err = writer.CreateFormFile(f.Label, filepath.Base(f.Path))
	} else {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`,
			f.Label, filepath.Base(f.Path)))
		h.Set("Content-Type", f.ContentType)
		part, err = writer.CreatePart(h)
	}
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func encodeJSON(v any) (payload, error) {
	var b []byte
	var err error
	if cv, ok := v.(cty.Value); ok {
		b, err = (ctyjson.SimpleJSONValue{Value: cv}).MarshalJSON()
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return payload{}, err
	}
	return payload{raw: b, ctype: "application/json"}, nil
}

// encodeBody renders the raw body by shape. Containers become a form
// encoded pair list, strings and numbers go as-is, readers stream through
// untouched. Callables have no Go rendering and are rejected the same way
// unpairable containers are.
func encodeBody(v any) (payload, error) {
	if r, ok := v.(io.Reader); ok {
		return payload{reader: r}, nil
	}
	switch kv.KindOf(v) {
	case kv.String:
		switch s := v.(type) {
		case string:
			return payload{raw: []byte(s)}, nil
		case []byte:
			return payload{raw: s}, nil
		}
		return payload{raw: []byte(fmt.Sprint(v))}, nil
	case kv.Number, kv.Bool:
		return payload{raw: []byte(fmt.Sprint(v))}, nil
	case kv.Sequence, kv.Mapping:
		form, err := encodeForm(v)
		if err != nil {
			return payload{}, err
		}
		return payload{raw: form, ctype: "application/x-www-form-urlencoded"}, nil
	case kv.Nil:
		return payload{}, nil
	}
	return payload{}, fmt.Errorf("body: %w", kv.ErrNotPairable)
}

// encodeForm flattens a container into application/x-www-form-urlencoded.
// cty containers go through the pair coercer; plain Go maps are handled
// directly for convenience.
func encodeForm(v any) ([]byte, error) {
	form := url.Values{}
	switch m := v.(type) {
	case cty.Value:
		pairs, err := kv.Pairs(m)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			form.Add(p.Key, kv.Text(p.Value))
		}
	case map[string]string:
		for k, val := range m {
			form.Add(k, val)
		}
	case map[string][]string:
		for k, vals := range m {
			for _, val := range vals {
				form.Add(k, val)
			}
		}
	case map[string]any:
		for k, val := range m {
			form.Add(k, fmt.Sprint(val))
		}
	default:
		return nil, fmt.Errorf("body %T: %w", v, kv.ErrNotPairable)
	}
	return []byte(form.Encode()), nil
}

// QueryString renders a container as a URL query component, reusing the
// pair coercer so sequences of pairs keep their order semantics.
func QueryString(v cty.Value) (string, error) {
	pairs, err := kv.Pairs(v)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Text(p.Value)))
	}
	return b.String(), nil
}
