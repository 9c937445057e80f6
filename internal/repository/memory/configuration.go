package memory

import (
	"context"
	"sync"
	"time"

	"github.com/africa-markett/storefront/internal/domain"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

type entry struct {
	cfg       domain.Configuration
	expiresAt time.Time
}

// ConfigurationRepository keeps configurator sessions in process memory with
// an inactivity timeout. Expired sessions are dropped lazily.
type ConfigurationRepository struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewConfigurationRepository creates a repository whose sessions expire ttl
// after their last Save.
func NewConfigurationRepository(ttl time.Duration) *ConfigurationRepository {
	return &ConfigurationRepository{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a configuration by ID.
func (r *ConfigurationRepository) Get(_ context.Context, id string) (*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok || r.expired(e) {
		delete(r.entries, id)
		return nil, apperrors.NotFound("configuration", id)
	}
	return clone(&e.cfg), nil
}

// Save stores a copy of cfg, bumps its version and restarts its timeout. It
// fails with a conflict when the stored version moved on since cfg was read.
func (r *ConfigurationRepository) Save(_ context.Context, cfg *domain.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictExpired()
	current, found := r.entries[cfg.ID]
	if err := domain.CheckSaveVersion(cfg.ID, cfg.Version, current.cfg.Version, found); err != nil {
		return err
	}

	cfg.Version++
	r.entries[cfg.ID] = entry{cfg: *clone(cfg), expiresAt: r.now().Add(r.ttl)}
	return nil
}

// Delete removes a configuration.
func (r *ConfigurationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (r *ConfigurationRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *ConfigurationRepository) expired(e entry) bool {
	return r.ttl > 0 && !r.now().Before(e.expiresAt)
}

func (r *ConfigurationRepository) evictExpired() {
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
		}
	}
}

// clone copies the selection pointers so callers cannot reach stored state.
// The option lists are never mutated after creation and stay shared.
func clone(c *domain.Configuration) *domain.Configuration {
	out := *c
	if c.SelectedDimension != nil {
		d := *c.SelectedDimension
		out.SelectedDimension = &d
	}
	if c.SelectedMedium != nil {
		m := *c.SelectedMedium
		out.SelectedMedium = &m
	}
	return &out
}
