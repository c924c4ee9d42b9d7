package models

// User is the identity of the caller as resolved by the upstream gateway
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
