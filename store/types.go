// Package store holds the demo entity types used by the integration tests
// and the maskctl built-in registry.
package store

import (
	"time"
)

// User represents an account that can own or join projects.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	PasswordHash string `json:"-" db:"password_hash"` // never leaves the store
	Email        string `json:"email" db:"email"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// Project represents a unit of work with an owner and a member list.
type Project struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Owner       *User     `json:"owner"` // Has-One relationship
	Users       []User    `json:"users"` // Has-Many relationship
	Start       time.Time `json:"start" db:"start"`
	PlanedEnd   time.Time `json:"planed_end" db:"planed_end"`
}

// StateConverter maps the boolean activity flag to its wire representation.
// true <-> "active", false <-> "inactive".
type StateConverter struct{}

// ToView converts the entity-side boolean to its state string.
func (StateConverter) ToView(raw any) (any, error) {
	if raw == true {
		return "active", nil
	}

	return "inactive", nil
}

// ToEntity converts a state string back to the entity-side boolean.
func (StateConverter) ToEntity(view any) (any, error) {
	return view == "active", nil
}
