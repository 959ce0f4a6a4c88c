package models

// ReferenceItem is one catalog entry the assistant can match user input against
type ReferenceItem struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Details     string `json:"details,omitempty"`
}
