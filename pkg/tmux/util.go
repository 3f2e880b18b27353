package tmux

import "strings"

// SanitizeForTmuxSession creates a valid session name from a string such as
// a directory name. It replaces spaces and special characters with hyphens,
// converts to lowercase, and ensures the name is a reasonable length.
func SanitizeForTmuxSession(title string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, title)

	sanitized = strings.ToLower(sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-_")

	if sanitized == "" {
		sanitized = "session"
	}

	if len(sanitized) > 50 {
		sanitized = strings.TrimRight(sanitized[:50], "-_")
	}

	return sanitized
}

// QualifiedName maps a remux session name into the tool's tmux namespace.
// tmux treats '.' and ':' as target separators, so both become '_'.
func QualifiedName(prefix, name string) string {
	safe := strings.NewReplacer(".", "_", ":", "_").Replace(name)
	if prefix == "" {
		return safe
	}
	return prefix + "-" + safe
}

// UnqualifiedName strips the namespace prefix. ok is false for sessions that
// do not belong to the namespace.
func UnqualifiedName(prefix, sessionName string) (string, bool) {
	if prefix == "" {
		return sessionName, true
	}
	rest, ok := strings.CutPrefix(sessionName, prefix+"-")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
