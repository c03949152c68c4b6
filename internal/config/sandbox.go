package config

import (
	lua "github.com/yuin/gopher-lua"
)

// safeLibs are the only standard libraries opened in the sandbox.
var safeLibs = []struct {
	name string
	open lua.LGFunction
}{
	{lua.BaseLibName, lua.OpenBase},
	{lua.TabLibName, lua.OpenTable},
	{lua.StringLibName, lua.OpenString},
	{lua.MathLibName, lua.OpenMath},
}

// codeLoaders are base functions that can run code from outside the config.
var codeLoaders = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// newSandboxedVM creates a Lua VM that can evaluate declarative config but
// cannot touch the OS, the filesystem, or load other code.
//
// The os, io, package, debug, coroutine and channel libraries are never
// opened. Call stack and registry sizes are bounded.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: callStackSize,
		RegistrySize:  registrySize,
	})

	for _, lib := range safeLibs {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for _, name := range codeLoaders {
		L.SetGlobal(name, lua.LNil)
	}

	return L
}
