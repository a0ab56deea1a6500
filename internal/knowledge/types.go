package knowledge

import (
	"context"
)

// CodeWriter defines the interface for turning a prompt into component
// source code.
type CodeWriter interface {
	// GenerateComponent returns the writer's raw response to a component
	// or repair prompt. Callers parse and validate it.
	GenerateComponent(ctx context.Context, prompt string) (string, error)
}

// ComponentRequest describes the component the user wants.
type ComponentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Props       []string `json:"props,omitempty"`
}

// ComponentFile is one generated source file.
type ComponentFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ComponentPayload is the JSON shape writers must respond with.
type ComponentPayload struct {
	ComponentName string          `json:"component_name"`
	Files         []ComponentFile `json:"files"`
	Notes         string          `json:"notes,omitempty"`
}
