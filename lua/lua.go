// Package reqlua holds the shared plumbing for the lua runtimes embedded in
// this module: value conversion between Go and lua, table constructors for
// request data, and script error formatting.
package reqlua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// MakeTable builds a table from already converted lua values.
func MakeTable(l *lua.LState, in map[string]lua.LValue) *lua.LTable {
	tbl := l.NewTable()
	for k, v := range in {
		l.SetField(tbl, k, v)
	}
	return tbl
}

// StringsTable builds a flat string-to-string table.
func StringsTable(l *lua.LState, in map[string]string) *lua.LTable {
	tbl := l.NewTable()
	for k, v := range in {
		l.SetField(tbl, k, lua.LString(v))
	}
	return tbl
}

// ValuesTable builds a table of arrays, the shape headers and query
// parameters take in scripts: t["Accept"][1] is the first accept value.
func ValuesTable(l *lua.LState, in map[string][]string) *lua.LTable {
	tbl := l.NewTable()
	for k, values := range in {
		arr := l.NewTable()
		for _, v := range values {
			arr.Append(lua.LString(v))
		}
		l.SetField(tbl, k, arr)
	}
	return tbl
}

// ToLua converts a decoded JSON-ish Go value into its lua form. Slices become
// array tables, maps become keyed tables, anything unrecognized is
// stringified.
func ToLua(l *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case float64:
		return lua.LNumber(x)
	case int:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []any:
		tbl := l.NewTable()
		for _, el := range x {
			tbl.Append(ToLua(l, el))
		}
		return tbl
	case map[string]any:
		tbl := l.NewTable()
		for k, el := range x {
			l.SetField(tbl, k, ToLua(l, el))
		}
		return tbl
	}
	return lua.LString(fmt.Sprint(v))
}

// FromLua converts a lua value back into plain Go data. Tables with a
// positive array length come back as slices, other tables as string-keyed
// maps. Functions and userdata have no Go form and convert to nil.
func FromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LString:
		return string(x)
	case lua.LNumber:
		return float64(x)
	case lua.LBool:
		return bool(x)
	case *lua.LTable:
		if x.MaxN() > 0 {
			arr := make([]any, 0, x.MaxN())
			for i := 1; i <= x.MaxN(); i++ {
				arr = append(arr, FromLua(x.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		x.ForEach(func(key, value lua.LValue) {
			m[lua.LVAsString(key)] = FromLua(value)
		})
		return m
	}
	return nil
}
