package platform

import (
	"fmt"
	"path/filepath"
)

const (
	// AppName is the directory name used on macOS and Windows.
	AppName = "IPAView"
	// appDirName is the directory name used on XDG platforms.
	appDirName = "ipaview"
)

// Dirs holds the per-user directories IPAView uses.
type Dirs struct {
	Home       string
	AppSupport string // cache and recent entries live here
	Config     string // config.lua lives here
	Downloads  string
}

// ResolveDirs computes the per-user directories for info's OS. getenv is
// usually os.Getenv; tests pass a map lookup.
//
//	darwin:  ~/Library/Application Support/IPAView
//	windows: %AppData%\IPAView
//	other:   $XDG_DATA_HOME/ipaview (~/.local/share/ipaview)
func ResolveDirs(info *Info, getenv func(string) string) (Dirs, error) {
	home := getenv("HOME")
	if info.IsWindows() && getenv("USERPROFILE") != "" {
		home = getenv("USERPROFILE")
	}
	if home == "" {
		return Dirs{}, fmt.Errorf("home directory is not set")
	}

	d := Dirs{
		Home:      home,
		Downloads: filepath.Join(home, "Downloads"),
	}

	switch {
	case info.IsMacOS():
		support := filepath.Join(home, "Library", "Application Support")
		d.AppSupport = filepath.Join(support, AppName)
		d.Config = filepath.Join(support, appDirName)
	case info.IsWindows():
		appData := getenv("AppData")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		d.AppSupport = filepath.Join(appData, AppName)
		d.Config = filepath.Join(appData, appDirName)
	default:
		d.AppSupport = filepath.Join(xdg(getenv, "XDG_DATA_HOME", home, ".local", "share"), appDirName)
		d.Config = filepath.Join(xdg(getenv, "XDG_CONFIG_HOME", home, ".config"), appDirName)
		if dl := getenv("XDG_DOWNLOAD_DIR"); filepath.IsAbs(dl) {
			d.Downloads = dl
		}
	}

	return d, nil
}

// xdg returns $key when it is an absolute path, else home joined with def.
func xdg(getenv func(string) string, key, home string, def ...string) string {
	if v := getenv(key); filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(append([]string{home}, def...)...)
}
