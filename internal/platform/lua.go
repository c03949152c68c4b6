package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// LuaGlobal is the name of the table InjectPlatformTable installs.
const LuaGlobal = "platform"

// InjectPlatformTable installs a read-only `platform` global describing
// info and dirs. Call it before running any user config code.
//
// Fields: os, arch, arch_raw, version, distro (nil off Linux), the booleans
// is_linux, is_macos and is_windows, the directories home, app_support_dir
// and downloads_dir, and when(cond, value).
func InjectPlatformTable(L *lua.LState, info *Info, dirs Dirs) error {
	fields := L.NewTable()

	for name, value := range map[string]string{
		"os":              info.OS,
		"arch":            info.Arch,
		"arch_raw":        info.ArchRaw,
		"version":         info.Version,
		"home":            dirs.Home,
		"app_support_dir": dirs.AppSupport,
		"downloads_dir":   dirs.Downloads,
	} {
		fields.RawSetString(name, lua.LString(value))
	}

	fields.RawSetString("is_linux", lua.LBool(info.IsLinux()))
	fields.RawSetString("is_macos", lua.LBool(info.IsMacOS()))
	fields.RawSetString("is_windows", lua.LBool(info.IsWindows()))

	if info.Distro != "" {
		fields.RawSetString("distro", lua.LString(info.Distro))
	}

	fields.RawSetString("when", L.NewFunction(luaWhen))

	L.SetGlobal(LuaGlobal, readOnlyProxy(L, fields))
	return nil
}

// luaWhen implements platform.when(cond, value): value if cond, else nil.
func luaWhen(L *lua.LState) int {
	if L.CheckBool(1) {
		L.Push(L.Get(2))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

// readOnlyProxy returns an empty table whose metatable serves reads from
// fields and raises on writes. The metatable itself is hidden.
func readOnlyProxy(L *lua.LState, fields *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	mt.RawSetString("__index", fields)
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only")
		return 0
	}))
	mt.RawSetString("__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
