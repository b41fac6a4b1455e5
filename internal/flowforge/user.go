package flowforge

import "time"

// User is an account that owns workflows. The core treats the ID as an
// opaque partition key; how the caller's identity was verified is the API
// boundary's concern.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}
