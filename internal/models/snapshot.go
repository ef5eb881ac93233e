// internal/models/snapshot.go
package models

import "time"

// BatchSnapshot is a named record of a finished batch. It is never modified after creation.
type BatchSnapshot struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	CreatedAt   time.Time          `json:"createdAt"`
	FormPayload FormPayload        `json:"formPayload"`
	Results     map[string]Outcome `json:"results"`
}
