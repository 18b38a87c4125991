package http

import "strings"

const tasksPrefix = "/api/tasks/"

// ExtractTaskPath splits /api/tasks/{id}[/{action}] into its id and optional
// action segment.
func ExtractTaskPath(path string) (taskID, action string, ok bool) {
	if !strings.HasPrefix(path, tasksPrefix) {
		return "", "", false
	}

	remaining := strings.Trim(strings.TrimPrefix(path, tasksPrefix), "/")
	if remaining == "" {
		return "", "", false
	}

	parts := strings.Split(remaining, "/")
	switch len(parts) {
	case 1:
		return parts[0], "", true
	case 2:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
