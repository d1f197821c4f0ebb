// Package inmem provides a user directory that works from memory.
// In the full deployment the directory is owned by the surrounding user management -
// this service only resolves IDs to display names through it
package inmem

import (
	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

// UserRepo provides a simple in-memory user directory
type UserRepo struct {
	users map[uint]models.User
}

// New creates a new user directory seeded with the given users
func New(users []models.User) *UserRepo {
	r := &UserRepo{
		users: make(map[uint]models.User),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

// GetByID returns the user with the given ID, or nil if no such user exists
func (r *UserRepo) GetByID(id uint) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		// Copy the user
		ret := u
		return &ret, nil
	}
	return nil, nil
}
