package lua

import (
	"fmt"
	"strconv"

	lua "github.com/yuin/gopher-lua"
)

// Block data crosses the bridge in the shape of decoded JSON: nil, bool,
// float64, string, []any and map[string]any.

// fromLua converts a script result to block data. A table whose keys are
// exactly 1..n becomes a slice, any other table a map. Functions, threads
// and cyclic references are dropped.
func fromLua(lv lua.LValue) any {
	return fromLuaSeen(lv, map[*lua.LTable]bool{})
}

func fromLuaSeen(lv lua.LValue, seen map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if seen[v] {
			return nil
		}
		seen[v] = true
		defer delete(seen, v)
		if n := v.MaxN(); n > 0 && n == tableLen(v) {
			list := make([]any, n)
			for i := range list {
				list[i] = fromLuaSeen(v.RawGetInt(i+1), seen)
			}
			return list
		}
		obj := map[string]any{}
		v.ForEach(func(k, val lua.LValue) {
			if gv := fromLuaSeen(val, seen); gv != nil {
				obj[tableKey(k)] = gv
			}
		})
		return obj
	}
	return nil
}

func tableLen(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

func tableKey(k lua.LValue) string {
	if n, ok := k.(lua.LNumber); ok {
		return strconv.FormatFloat(float64(n), 'f', -1, 64)
	}
	return k.String()
}

// toLua converts block data or tool settings to a Lua value. Settings
// decoded from TOML or YAML may carry integers and typed slices.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case float64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case []any:
		t := L.CreateTable(len(val), 0)
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	case []string:
		t := L.CreateTable(len(val), 0)
		for _, item := range val {
			t.Append(lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(val))
		for k, item := range val {
			t.RawSetString(k, toLua(L, item))
		}
		return t
	case lua.LValue:
		return val
	}
	return lua.LString(fmt.Sprint(v))
}
