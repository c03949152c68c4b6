// Package platform detects the host platform and resolves the per-OS
// directories IPAView stores its data in.
//
// Detection uses gopsutil for Linux distribution details and falls back to
// OS and architecture only when that fails. The results are also exposed to
// the Lua configuration as a read-only "platform" table.
package platform

import "context"

// Info contains platform detection information.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // normalized architecture ("amd64", "arm64", or GOARCH)
	ArchRaw string // original GOARCH
	Distro  string // distro ID (Linux only, e.g., "ubuntu")
	Version string // distro or OS version, when known
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// String renders the platform for diagnostics, e.g. "linux/amd64 (ubuntu 22.04)".
func (i *Info) String() string {
	s := i.OS + "/" + i.Arch
	switch {
	case i.Distro != "" && i.Version != "":
		s += " (" + i.Distro + " " + i.Version + ")"
	case i.Distro != "":
		s += " (" + i.Distro + ")"
	case i.Version != "":
		s += " (" + i.Version + ")"
	}
	return s
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
