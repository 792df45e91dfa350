package identity

import (
	"context"
	"fmt"
	"strings"

	"prodpipe/internal/config"
)

// Resolution reports how a Generate call settled on its identifier.
type Resolution string

const (
	// ResolutionFresh means this call registered the identifier.
	ResolutionFresh Resolution = "fresh"
	// ResolutionExisting means the same pair already held the identifier
	// and the call returned it idempotently.
	ResolutionExisting Resolution = "already_exists"
)

// UniquenessStore provides atomic insert-if-absent registration of canonical
// identifiers keyed by their owning (namespace, code) pair.
type UniquenessStore interface {
	Reserve(ctx context.Context, canonicalID, ownerKey string) (bool, error)
	LookupOwner(ctx context.Context, canonicalID string) (string, bool, error)
}

// Generator produces canonical product identifiers. Uniqueness is settled
// entirely by the store's atomic reserve, never by in-process locking.
type Generator struct {
	store         UniquenessStore
	canonicalizer *Canonicalizer
	maxLength     int
	suffixLength  int
}

// NewGenerator builds a generator from identity configuration.
func NewGenerator(store UniquenessStore, cfg config.Identity) *Generator {
	return &Generator{
		store:         store,
		canonicalizer: NewCanonicalizer(cfg.MaxSlugLength),
		maxLength:     cfg.MaxLength,
		suffixLength:  cfg.SuffixLength,
	}
}

// Generate returns the canonical identifier for a (namespace, code) pair.
//
// The unsuffixed candidate is tried first. A conflict held by the same pair
// is an idempotent success. A conflict held by a different pair falls back to
// one deterministic suffixed candidate; if that is also held by a different
// pair the call fails with ErrGenerationExhausted rather than looping.
func (g *Generator) Generate(ctx context.Context, namespace, rawCode string) (string, Resolution, error) {
	nsSlug, err := g.canonicalizer.Canonicalize(namespace)
	if err != nil {
		return "", "", fmt.Errorf("namespace: %w", err)
	}
	slug, err := g.canonicalizer.Canonicalize(rawCode)
	if err != nil {
		return "", "", err
	}

	// Leave room for namespace, both separators, and the collision suffix
	// inside the overall length budget.
	budget := g.maxLength - len(nsSlug) - 2 - g.suffixLength
	if budget < 1 {
		return "", "", fmt.Errorf("namespace %q leaves no room for a code: %w", nsSlug, ErrInvalidCode)
	}
	if len(slug) > budget {
		slug = strings.TrimRight(slug[:budget], "-")
		if slug == "" {
			return "", "", ErrInvalidCode
		}
	}

	owner := nsSlug + "\x00" + strings.TrimSpace(rawCode)
	candidate := nsSlug + "-" + slug

	inserted, err := g.store.Reserve(ctx, candidate, owner)
	if err != nil {
		return "", "", err
	}
	if inserted {
		return candidate, ResolutionFresh, nil
	}

	existing, found, err := g.store.LookupOwner(ctx, candidate)
	if err != nil {
		return "", "", err
	}
	if found && existing == owner {
		return candidate, ResolutionExisting, nil
	}

	suffixed := candidate + "-" + collisionSuffix(owner, g.suffixLength)
	inserted, err = g.store.Reserve(ctx, suffixed, owner)
	if err != nil {
		return "", "", err
	}
	if inserted {
		return suffixed, ResolutionFresh, nil
	}

	existing, found, err = g.store.LookupOwner(ctx, suffixed)
	if err != nil {
		return "", "", err
	}
	if found && existing == owner {
		return suffixed, ResolutionExisting, nil
	}

	return "", "", fmt.Errorf("no identifier available for %s: %w", candidate, ErrGenerationExhausted)
}
