package services

import (
	"context"
	"errors"

	"centre-block/internal/models"
	"centre-block/internal/utils"
)

var (
	// ErrNoSelection means no centre id was given; nothing was looked up.
	ErrNoSelection = errors.New("no centre selected")
	// ErrCentreNotFound means the directory loaded but holds no centre with
	// the requested id.
	ErrCentreNotFound = errors.New("centre not found")
)

// FindCentre scans centres for the first record whose id loosely equals id.
// It performs no I/O.
func FindCentre(id string, centres []models.CentreRecord) (models.CentreRecord, bool) {
	for _, c := range centres {
		if utils.SameID(c.ID(), id) {
			return c, true
		}
	}
	return nil, false
}

// Resolver maps a selected id to one centre record.
type Resolver struct {
	directory DirectoryFetcher
}

func NewResolver(directory DirectoryFetcher) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve looks id up in known first and, when that misses or known is
// empty, in a freshly fetched directory. Directory failures are returned
// unchanged.
func (r *Resolver) Resolve(ctx context.Context, id string, known []models.CentreRecord) (models.CentreRecord, error) {
	if utils.NormalizeID(id) == "" {
		return nil, ErrNoSelection
	}

	if len(known) > 0 {
		if centre, ok := FindCentre(id, known); ok {
			return centre, nil
		}
	}

	centres, err := r.directory.FetchAllCentres(ctx)
	if err != nil {
		return nil, err
	}

	if centre, ok := FindCentre(id, centres); ok {
		return centre, nil
	}
	return nil, ErrCentreNotFound
}
