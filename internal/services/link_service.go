// Package services contains the business logic of the link registry: code
// assignment, uniqueness enforcement and resolution with click accounting.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
	"github.com/shortyhq/shorty/internal/shortcode"
	"github.com/shortyhq/shorty/internal/storage"
)

// LinkService owns the creation-time invariants (validation, uniqueness)
// and the lookup-time behavior (redirect target, click accounting). It is
// the only component with domain invariants; durability belongs entirely
// to the storage adapter it wraps.
type LinkService struct {
	store storage.Store
}

// NewLinkService creates a LinkService on top of the given store.
func NewLinkService(store storage.Store) *LinkService {
	return &LinkService{store: store}
}

// CreateLink registers a new short link for longURL.
//
// A non-blank customAlias is normalized and used as the code; an alias that
// is already taken fails with ErrAliasConflict. Without an alias a random
// code is generated, with a single regeneration attempt if the insert
// reports a duplicate. ownerID is recorded as-is, or as the anonymous
// sentinel when empty. baseURL forms the stored short URL.
func (s *LinkService) CreateLink(ctx context.Context, longURL, customAlias, ownerID, baseURL string) (*models.Link, error) {
	// Validation happens before any storage access.
	if err := validateLongURL(longURL); err != nil {
		return nil, err
	}

	code := shortcode.Normalize(customAlias)
	custom := code != ""

	if custom {
		// Pre-check the alias. The insert below still rejects duplicates,
		// which closes the race between two concurrent creates.
		_, err := s.store.FindByCode(ctx, code)
		if err == nil {
			return nil, apperrors.ErrAliasConflict
		}
		if !errors.Is(err, apperrors.ErrShortCodeNotFound) {
			return nil, err
		}
	} else {
		generated, err := shortcode.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}
		code = generated
	}

	if ownerID == "" {
		ownerID = models.AnonymousOwner
	}

	link := s.buildLink(code, longURL, ownerID, baseURL)
	err := s.store.Insert(ctx, link)
	if errors.Is(err, apperrors.ErrDuplicateCode) {
		if custom {
			return nil, apperrors.ErrAliasConflict
		}
		// Random collision. Retry generation exactly once; never loop.
		log.Printf("Short code '%s' collided on insert, retrying generation once", code)
		generated, genErr := shortcode.Generate()
		if genErr != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", genErr)
		}
		link = s.buildLink(generated, longURL, ownerID, baseURL)
		if err := s.store.Insert(ctx, link); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateCode) {
				return nil, apperrors.ErrShortCodeGenerationFailed
			}
			return nil, err
		}
		return link, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// Resolve looks up a code and applies the click side effect. The increment
// is attempted for every found record but a failure only gets logged: the
// user's navigation takes priority over analytics fidelity. Only a failed
// lookup surfaces an error.
func (s *LinkService) Resolve(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementClicks(ctx, code); err != nil {
		log.Printf("WARNING: failed to increment clicks for '%s': %v", code, err)
	} else {
		link.Clicks++
	}
	return link, nil
}

// GetLinkByCode retrieves a link without touching its click counter.
func (s *LinkService) GetLinkByCode(ctx context.Context, code string) (*models.Link, error) {
	return s.store.FindByCode(ctx, code)
}

// CountRecordedClicks returns how many access events the backend holds for
// a code, for backends that keep events queryable. The second return is
// false when the backend can't answer (events may live in an append-only
// log or on the remote table). The link's own counter stays the source of
// truth for click totals.
func (s *LinkService) CountRecordedClicks(ctx context.Context, code string) (int64, bool) {
	counter, ok := s.store.(interface {
		CountClicksByCode(ctx context.Context, code string) (int64, error)
	})
	if !ok {
		return 0, false
	}
	count, err := counter.CountClicksByCode(ctx, code)
	if err != nil {
		log.Printf("WARNING: failed to count recorded clicks for '%s': %v", code, err)
		return 0, false
	}
	return count, true
}

func (s *LinkService) buildLink(code, longURL, ownerID, baseURL string) *models.Link {
	return &models.Link{
		Code:      code,
		LongURL:   longURL,
		ShortURL:  baseURL + "/" + code,
		Clicks:    0,
		CreatedAt: time.Now(),
		OwnerID:   ownerID,
	}
}

// validateLongURL requires a syntactically well-formed absolute URI with a
// host, e.g. https://example.com/path.
func validateLongURL(longURL string) error {
	if longURL == "" {
		return apperrors.ErrInvalidURL
	}
	u, err := url.Parse(longURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return apperrors.ErrInvalidURL
	}
	return nil
}
