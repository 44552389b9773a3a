//go:build windows

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
			"chrome":             `C:\Program Files\Google\Chrome\Application\chrome.exe`,
			"visual studio code": filepath.Join(home, `AppData\Local\Programs\Microsoft VS Code\Code.exe`),
			"notepad":            `C:\Windows\System32\notepad.exe`,
			"calculator":         `C:\Windows\System32\calc.exe`,
		},
		Processes: map[string]string{
			"chrome":             "chrome.exe",
			"notepad":            "notepad.exe",
			"calculator":         "Calculator.exe",
			"visual studio code": "Code.exe",
		},
	}
}
