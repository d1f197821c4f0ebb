// Package inmem provides a major directory that works from memory.
// The major catalog belongs to the surrounding CRUD layer - this service only needs
// id-to-name lookups for audience grouping and popularity baselines
package inmem

import (
	"sort"

	"github.com/FPTAlumniConnectGSU68/alumniconnect/internal/models"
)

// MajorRepo provides a simple in-memory major directory
type MajorRepo struct {
	majors map[uint]models.Major
}

// New creates a new major directory seeded with the given majors
func New(majors []models.Major) *MajorRepo {
	r := &MajorRepo{
		majors: make(map[uint]models.Major),
	}
	for _, m := range majors {
		r.majors[m.ID] = m
	}
	return r
}

// GetByID returns the major with the given ID, or nil if no such major exists
func (r *MajorRepo) GetByID(id uint) (*models.Major, error) {
	if m, ok := r.majors[id]; ok {
		ret := m
		return &ret, nil
	}
	return nil, nil
}

// List returns all known majors ordered by ID
func (r *MajorRepo) List() ([]models.Major, error) {
	ret := make([]models.Major, 0, len(r.majors))
	for _, m := range r.majors {
		ret = append(ret, m)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}
