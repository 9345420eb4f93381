// Package usage classifies foreground windows and accumulates per-app time.
package usage

import "strings"

// UnknownApp is used when no title could be read.
const UnknownApp = "Unknown"

var titleSeparators = []string{" - ", " | "}

// Rule maps a case-insensitive title substring to an application name.
type Rule struct {
	Match string
	Name  string
}

// Rules is an ordered rule set; the first match wins.
type Rules []Rule

// DefaultRules covers common desktop applications.
func DefaultRules() Rules {
	return Rules{
		{Match: "visual studio code", Name: "VS Code"},
		{Match: "vscode", Name: "VS Code"},
		{Match: "visual studio", Name: "Visual Studio"},
		{Match: "intellij", Name: "IntelliJ IDEA"},
		{Match: "goland", Name: "GoLand"},
		{Match: "pycharm", Name: "PyCharm"},
		{Match: "youtube", Name: "YouTube"},
		{Match: "google chrome", Name: "Chrome"},
		{Match: "chrome", Name: "Chrome"},
		{Match: "mozilla firefox", Name: "Firefox"},
		{Match: "firefox", Name: "Firefox"},
		{Match: "microsoft edge", Name: "Edge"},
		{Match: "slack", Name: "Slack"},
		{Match: "discord", Name: "Discord"},
		{Match: "microsoft teams", Name: "Teams"},
		{Match: "zoom", Name: "Zoom"},
		{Match: "figma", Name: "Figma"},
		{Match: "photoshop", Name: "Photoshop"},
		{Match: "notion", Name: "Notion"},
		{Match: "obsidian", Name: "Obsidian"},
		{Match: "word", Name: "Word"},
		{Match: "excel", Name: "Excel"},
		{Match: "powerpoint", Name: "PowerPoint"},
		{Match: "spotify", Name: "Spotify"},
		{Match: "terminal", Name: "Terminal"},
		{Match: "powershell", Name: "Terminal"},
	}
}

// WithOverrides returns a rule set where extra rules are checked before r.
func (r Rules) WithOverrides(extra Rules) Rules {
	out := make(Rules, 0, len(extra)+len(r))
	out = append(out, extra...)
	return append(out, r...)
}

// Normalize maps a window title to an application name.
func (r Rules) Normalize(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UnknownApp
	}
	lower := strings.ToLower(title)
	for _, rule := range r {
		if rule.Match == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(rule.Match)) {
			return rule.Name
		}
	}
	return fallbackName(title)
}

// fallbackName keeps the segment after the last title separator, which is
// where most applications put their own name ("notes.txt - Notepad").
func fallbackName(title string) string {
	cut := -1
	sepLen := 0
	for _, sep := range titleSeparators {
		if idx := strings.LastIndex(title, sep); idx > cut {
			cut = idx
			sepLen = len(sep)
		}
	}
	if cut < 0 {
		return title
	}
	name := strings.TrimSpace(title[cut+sepLen:])
	if name == "" {
		return strings.TrimSpace(title[:cut])
	}
	return name
}
