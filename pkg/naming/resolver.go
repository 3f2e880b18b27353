// Package naming decides which name a new or renamed session gets.
package naming

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/grovetools/remux/errors"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/grovetools/remux/pkg/tmux"
)

// DefaultMaxSuffix bounds the disambiguation search.
const DefaultMaxSuffix = 1000

// Decision is the caller's answer to a collision.
type Decision int

const (
	// Abort leaves existing state alone and fails the operation.
	Abort Decision = iota
	// Reuse attaches to the existing session instead of creating one.
	Reuse
	// Suffix allocates the lowest free "<name>-N".
	Suffix
)

func (d Decision) String() string {
	switch d {
	case Reuse:
		return "reuse"
	case Suffix:
		return "suffix"
	default:
		return "abort"
	}
}

// ParseDecision parses "reuse", "suffix" or "abort".
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "reuse":
		return Reuse, nil
	case "suffix":
		return Suffix, nil
	case "abort":
		return Abort, nil
	}
	return Abort, errors.InvalidInput(fmt.Sprintf("unknown collision decision %q (want reuse, suffix or abort)", s))
}

// LiveChecker reports whether a live session exists for a remux name.
type LiveChecker interface {
	SessionExists(ctx context.Context, name string) (bool, error)
}

// Resolution describes what currently occupies a name.
type Resolution struct {
	Name      string
	HasRecord bool
	IsLive    bool
}

// Collision reports whether the name is in use by a record or a live session.
func (r Resolution) Collision() bool {
	return r.HasRecord || r.IsLive
}

// Err returns the COLLISION error for a taken name, or nil.
func (r Resolution) Err() error {
	if !r.Collision() {
		return nil
	}
	return errors.Collision(r.Name, r.HasRecord, r.IsLive)
}

// Resolver checks names against the metadata store and the live tmux server.
type Resolver struct {
	store     sessions.Store
	live      LiveChecker
	MaxSuffix int
}

// NewResolver creates a Resolver.
func NewResolver(store sessions.Store, live LiveChecker) *Resolver {
	return &Resolver{store: store, live: live, MaxSuffix: DefaultMaxSuffix}
}

// Resolve reports what occupies name. It never modifies state.
func (r *Resolver) Resolve(ctx context.Context, name string) (Resolution, error) {
	if err := sessions.ValidateName(name); err != nil {
		return Resolution{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid session name")
	}

	res := Resolution{Name: name}

	_, err := r.store.Read(name)
	switch {
	case err == nil:
		res.HasRecord = true
	case errors.Is(err, errors.ErrCodeNotFound):
	case errors.Is(err, errors.ErrCodeStaleMetadata):
		// An unreadable file still occupies the name.
		res.HasRecord = true
	default:
		return Resolution{}, err
	}

	live, err := r.live.SessionExists(ctx, name)
	if err != nil {
		return Resolution{}, err
	}
	res.IsLive = live
	return res, nil
}

// Disambiguate returns the first of base-2, base-3, ... that is free. A base
// too long to take a suffix is shortened so every candidate stays a valid name.
func (r *Resolver) Disambiguate(ctx context.Context, base string) (string, error) {
	max := r.MaxSuffix
	if max <= 0 {
		max = DefaultMaxSuffix
	}

	for i := 2; i <= max; i++ {
		candidate := suffixed(base, i)
		res, err := r.Resolve(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !res.Collision() {
			return candidate, nil
		}
	}

	return "", errors.New(errors.ErrCodeCollision,
		fmt.Sprintf("no free name for '%s' between %s-2 and %s-%d", base, base, base, max)).
		WithDetail("session", base).
		WithDetail("maxSuffix", max)
}

func suffixed(base string, n int) string {
	suffix := fmt.Sprintf("-%d", n)
	if keep := sessions.MaxNameLength - len(suffix); len(base) > keep {
		base = base[:keep]
	}
	return base + suffix
}

// CheckFree fails with COLLISION when name is taken. It never suffixes.
func (r *Resolver) CheckFree(ctx context.Context, name string) error {
	res, err := r.Resolve(ctx, name)
	if err != nil {
		return err
	}
	return res.Err()
}

// DefaultName derives a session name from a working directory.
func DefaultName(workingDirectory string) string {
	return tmux.SanitizeForTmuxSession(filepath.Base(workingDirectory))
}
