// Package store persists table profiles: named widget options that pages
// and API clients refer to by name.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tablesort/internal/widget"
)

var (
	// ErrNotFound is returned for unknown profile names.
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidName is returned for profile names that cannot be stored.
	ErrInvalidName = errors.New("invalid profile name")
)

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Profile is a named set of table options.
type Profile struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Options   widget.Options `json:"options"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Store is the interface for profile storage.
type Store interface {
	// Put creates the profile or replaces the options of the profile with
	// the same name. The stored profile is returned.
	Put(ctx context.Context, p Profile) (Profile, error)

	// Get retrieves a profile by name.
	Get(ctx context.Context, name string) (Profile, error)

	// List returns every profile ordered by name.
	List(ctx context.Context) ([]Profile, error)

	// Delete removes a profile by name.
	Delete(ctx context.Context, name string) error
}

// ValidateName checks that a profile name is 1 to 64 letters, digits, '.',
// '_' or '-', starting with a letter or digit.
func ValidateName(name string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
