package platform

import (
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveDirs(t *testing.T) {
	home := filepath.FromSlash("/home/user")

	tests := []struct {
		name          string
		os            string
		env           map[string]string
		wantSupport   string
		wantConfig    string
		wantDownloads string
	}{
		{
			name:          "linux defaults",
			os:            "linux",
			env:           map[string]string{"HOME": home},
			wantSupport:   filepath.Join(home, ".local", "share", "ipaview"),
			wantConfig:    filepath.Join(home, ".config", "ipaview"),
			wantDownloads: filepath.Join(home, "Downloads"),
		},
		{
			name: "linux xdg",
			os:   "linux",
			env: map[string]string{
				"HOME":             home,
				"XDG_DATA_HOME":    filepath.FromSlash("/xdg/data"),
				"XDG_CONFIG_HOME":  filepath.FromSlash("/xdg/config"),
				"XDG_DOWNLOAD_DIR": filepath.FromSlash("/xdg/dl"),
			},
			wantSupport:   filepath.FromSlash("/xdg/data/ipaview"),
			wantConfig:    filepath.FromSlash("/xdg/config/ipaview"),
			wantDownloads: filepath.FromSlash("/xdg/dl"),
		},
		{
			name: "linux relative xdg ignored",
			os:   "linux",
			env: map[string]string{
				"HOME":          home,
				"XDG_DATA_HOME": "relative/data",
			},
			wantSupport:   filepath.Join(home, ".local", "share", "ipaview"),
			wantConfig:    filepath.Join(home, ".config", "ipaview"),
			wantDownloads: filepath.Join(home, "Downloads"),
		},
		{
			name:          "macos",
			os:            "darwin",
			env:           map[string]string{"HOME": home},
			wantSupport:   filepath.Join(home, "Library", "Application Support", "IPAView"),
			wantConfig:    filepath.Join(home, "Library", "Application Support", "ipaview"),
			wantDownloads: filepath.Join(home, "Downloads"),
		},
		{
			name: "windows",
			os:   "windows",
			env: map[string]string{
				"USERPROFILE": home,
				"AppData":     filepath.FromSlash("/users/u/AppData/Roaming"),
			},
			wantSupport:   filepath.FromSlash("/users/u/AppData/Roaming/IPAView"),
			wantConfig:    filepath.FromSlash("/users/u/AppData/Roaming/ipaview"),
			wantDownloads: filepath.Join(home, "Downloads"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dirs, err := ResolveDirs(&Info{OS: tt.os}, envMap(tt.env))
			if err != nil {
				t.Fatalf("ResolveDirs() error = %v", err)
			}
			if dirs.Home != home {
				t.Errorf("Home = %s, want %s", dirs.Home, home)
			}
			if dirs.AppSupport != tt.wantSupport {
				t.Errorf("AppSupport = %s, want %s", dirs.AppSupport, tt.wantSupport)
			}
			if dirs.Config != tt.wantConfig {
				t.Errorf("Config = %s, want %s", dirs.Config, tt.wantConfig)
			}
			if dirs.Downloads != tt.wantDownloads {
				t.Errorf("Downloads = %s, want %s", dirs.Downloads, tt.wantDownloads)
			}
		})
	}
}

func TestResolveDirs_NoHome(t *testing.T) {
	if _, err := ResolveDirs(&Info{OS: "linux"}, envMap(nil)); err == nil {
		t.Error("ResolveDirs() without HOME should fail")
	}
}
