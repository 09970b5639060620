package domain

import "time"

// GenerationKind distinguishes image and video history records.
type GenerationKind string

const (
	GenerationKindImage GenerationKind = "image"
	GenerationKindVideo GenerationKind = "video"
)

// Generation is a persisted history document for one successful generation.
type Generation struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Kind        GenerationKind `json:"kind"`
	Model       string         `json:"model"`
	Prompt      string         `json:"prompt"`
	URL         string         `json:"url"`
	StorageKey  string         `json:"storageKey"`
	ContentType string         `json:"contentType"`
	Credits     int            `json:"credits"`
	Locale      string         `json:"locale,omitempty"`
	Country     string         `json:"country,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
