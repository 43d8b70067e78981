// Package identity holds the verified user snapshot shared across services.
package identity

import "time"

// User is the identity of an authenticated caller. It is the shape embedded
// in signed tokens: once issued it is immutable, and the workspace id is
// authoritative (never taken from request input after signup).
type User struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"ws_id"`
	Fullname    string    `json:"fullname"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}
