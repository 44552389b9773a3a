//go:build !windows

package config

import "path/filepath"

func defaultCommands(home string) Commands {
	return Commands{
		Sites: defaultSites(),
		Folders: map[string]string{
			"downloads": filepath.Join(home, "Downloads"),
			"documents": filepath.Join(home, "Documents"),
			"desktop":   filepath.Join(home, "Desktop"),
			"pictures":  filepath.Join(home, "Pictures"),
			"music":     filepath.Join(home, "Music"),
			"videos":    filepath.Join(home, "Videos"),
		},
		Apps: map[string]string{
			"chrome":             "/usr/bin/google-chrome",
			"visual studio code": "/usr/bin/code",
			"notepad":            "/usr/bin/gedit",
			"calculator":         "/usr/bin/gnome-calculator",
		},
		Processes: map[string]string{
			"chrome":             "chrome",
			"notepad":            "gedit",
			"calculator":         "gnome-calculator",
			"visual studio code": "code",
		},
	}
}
