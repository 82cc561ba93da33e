package hook_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/zhucebuliaopx/requests/hook"
)

func newRequest(t *testing.T, method, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestBeforeOverrides(t *testing.T) {
	req := newRequest(t, "POST", "http://localhost/x")
	req.Header.Set("X-Version", "1")

	script := `
		return {
			headers = {
				["x-trace"] = "abc123",
				["x-version"] = requests.req.headers["X-Version"][1] .. "!",
			},
			body = "patched:" .. requests.req.method,
		}
	`
	o, err := hook.Before(script, req, []byte("original"))
	if err != nil {
		t.Fatal(err)
	}
	if o == nil {
		t.Fatal("expected overrides")
	}
	if o.Headers["x-trace"] != "abc123" {
		t.Errorf("x-trace = %q", o.Headers["x-trace"])
	}
	if o.Headers["x-version"] != "1!" {
		t.Errorf("x-version = %q", o.Headers["x-version"])
	}
	if o.Body != "patched:POST" {
		t.Errorf("body = %q", o.Body)
	}
}

func TestBeforeWithoutReturnValue(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	o, err := hook.Before(`local noop = 1`, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o != nil {
		t.Fatalf("expected no overrides, got %+v", o)
	}
}

func TestBeforeFail(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	_, err := hook.Before(`fail("nope")`, req, nil)
	if err == nil || err.Error() != "nope" {
		t.Fatalf("err = %v, want nope", err)
	}
}

func TestBeforeBase64Helper(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	o, err := hook.Before(`return { body = base64.encode("hi") }`, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if o == nil || o.Body != "aGk=" {
		t.Fatalf("overrides = %+v", o)
	}
}

func TestAfterExportsAndResult(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/user")
	res := &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
	script := `
		local data = json.decode(requests.res.body)
		requests.exports.name = data.name
		requests.exports.status = tostring(requests.res.status)
		return "checked " .. data.name
	`
	result, exports, err := hook.After(script, req, res, []byte(`{"name":"resty"}`))
	if err != nil {
		t.Fatal(err)
	}
	if result != "checked resty" {
		t.Errorf("result = %q", result)
	}
	if exports["name"] != "resty" || exports["status"] != "200" {
		t.Errorf("exports = %v", exports)
	}
}

func TestAfterFail(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	res := &http.Response{StatusCode: 200, Header: http.Header{}}
	script := `
		if requests.res.status ~= 201 then
			fail("expected 201 got " .. requests.res.status)
		end
	`
	_, _, err := hook.After(script, req, res, nil)
	if err == nil || !strings.Contains(err.Error(), "expected 201 got 200") {
		t.Fatalf("err = %v", err)
	}
}

func TestAfterRuntimeErrorShowsLine(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	res := &http.Response{StatusCode: 200, Header: http.Header{}}
	script := `local x = 1
error("kaboom")`
	_, _, err := hook.After(script, req, res, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "kaboom") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v", err)
	}
}

func TestEmptyScriptsAreNoops(t *testing.T) {
	req := newRequest(t, "GET", "http://localhost/x")
	if o, err := hook.Before("", req, nil); err != nil || o != nil {
		t.Fatalf("Before = %+v, %v", o, err)
	}
	result, exports, err := hook.After("", req, nil, nil)
	if err != nil || result != "" || exports != nil {
		t.Fatalf("After = %q, %v, %v", result, exports, err)
	}
}
