// Package hook runs the lua scripts attached to a request. A before script
// sees the assembled request and may override headers or the body; an after
// script sees the response, can export values, and can fail the exchange.
//
// Every run gets a fresh interpreter. Scripts talk to the host through a
// single "requests" global plus small base64 and json helper tables, and
// abort with fail("reason").
package hook

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/taybart/log"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	reqlua "github.com/zhucebuliaopx/requests/lua"
)

// Overrides are the mutations a before script asked for. Zero fields mean
// "leave it alone".
type Overrides struct {
	Headers map[string]string
	Body    string
}

// Before runs script against the assembled request. body is the encoded
// payload the request will be sent with, shown to the script as
// requests.req.body. A nil return with nil error means the script had no
// overrides to make.
func Before(script string, req *http.Request, body []byte) (*Overrides, error) {
	if script == "" {
		return nil, nil
	}
	log.Debugf("running before hook\n")

	l := lua.NewState()
	defer l.Close()
	openHelpers(l)
	populate(l, req, body, nil, nil)

	if err := execute(l, "before", script); err != nil {
		return nil, err
	}

	tbl, ok := l.Get(-1).(*lua.LTable)
	if !ok {
		return nil, nil
	}
	var o Overrides
	if err := mapper.Map(tbl, &o); err != nil {
		return nil, fmt.Errorf("before hook returned an unusable table: %w", err)
	}
	return &o, nil
}

// After runs script against the finished exchange. It returns the script's
// string result, if any, and whatever the script left in requests.exports.
// A fail() call surfaces as the returned error.
func After(script string, req *http.Request, res *http.Response, body []byte) (string, map[string]string, error) {
	if script == "" {
		return "", nil, nil
	}
	log.Debugf("running after hook\n")

	l := lua.NewState()
	defer l.Close()
	openHelpers(l)
	populate(l, req, nil, res, body)

	if err := execute(l, "after", script); err != nil {
		return "", nil, err
	}

	exports := readExports(l)
	result := ""
	if ret := l.Get(-1); ret != lua.LNil {
		result = ret.String()
	}
	return result, exports, nil
}

// mapper keeps lua table keys exactly as written; struct fields still match
// case-insensitively underneath.
var mapper = gluamapper.NewMapper(gluamapper.Option{
	NameFunc: func(s string) string { return s },
})

func execute(l *lua.LState, stage, script string) error {
	var failed error
	l.SetGlobal("fail", l.NewFunction(func(L *lua.LState) int {
		failed = errors.New(L.OptString(1, stage+" hook failed"))
		return 0
	}))
	if err := l.DoString(script); err != nil {
		return fmt.Errorf("%s hook: %w", stage, reqlua.FmtError(script, err))
	}
	return failed
}

// populate installs the "requests" global: req and res subtables for
// whichever side of the exchange exists, plus an empty exports table.
func populate(l *lua.LState, req *http.Request, reqBody []byte, res *http.Response, resBody []byte) {
	root := l.NewTable()
	if req != nil {
		reqTbl := l.NewTable()
		l.SetField(reqTbl, "method", lua.LString(req.Method))
		l.SetField(reqTbl, "url", lua.LString(req.URL.String()))
		l.SetField(reqTbl, "headers", reqlua.ValuesTable(l, req.Header))
		l.SetField(reqTbl, "body", lua.LString(reqBody))
		l.SetField(root, "req", reqTbl)
	}
	if res != nil {
		resTbl := l.NewTable()
		l.SetField(resTbl, "status", lua.LNumber(res.StatusCode))
		l.SetField(resTbl, "headers", reqlua.ValuesTable(l, res.Header))
		l.SetField(resTbl, "body", lua.LString(resBody))
		l.SetField(root, "res", resTbl)
	}
	l.SetField(root, "exports", l.NewTable())
	l.SetGlobal("requests", root)
}

// readExports pulls requests.exports back out, keeping string values only.
// The script may have replaced the table wholesale, so it is re-resolved.
func readExports(l *lua.LState) map[string]string {
	root, ok := l.GetGlobal("requests").(*lua.LTable)
	if !ok {
		return nil
	}
	tbl, ok := l.GetField(root, "exports").(*lua.LTable)
	if !ok {
		return nil
	}
	exports := map[string]string{}
	tbl.ForEach(func(key, value lua.LValue) {
		if s, ok := value.(lua.LString); ok {
			exports[lua.LVAsString(key)] = string(s)
		}
	})
	return exports
}

// openHelpers registers the base64 and json tables backed by the host.
func openHelpers(l *lua.LState) {
	b64 := l.NewTable()
	l.SetField(b64, "encode", l.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(base64.StdEncoding.EncodeToString([]byte(L.CheckString(1)))))
		return 1
	}))
	l.SetField(b64, "decode", l.NewFunction(func(L *lua.LState) int {
		raw, err := base64.StdEncoding.DecodeString(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(raw))
		return 1
	}))
	l.SetGlobal("base64", b64)

	js := l.NewTable()
	l.SetField(js, "encode", l.NewFunction(func(L *lua.LState) int {
		b, err := json.Marshal(reqlua.FromLua(L.CheckAny(1)))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(b))
		return 1
	}))
	l.SetField(js, "decode", l.NewFunction(func(L *lua.LState) int {
		var v any
		if err := json.Unmarshal([]byte(L.CheckString(1)), &v); err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(reqlua.ToLua(L, v))
		return 1
	}))
	l.SetGlobal("json", js)
}
