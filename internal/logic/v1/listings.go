package v1

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talalink/webapp/internal/core/domain"
	"github.com/talalink/webapp/middleware"
)

// ListingAPI is the slice of the backend client the listing service uses.
type ListingAPI interface {
	Listings(ctx context.Context) ([]domain.Listing, error)
	Listing(ctx context.Context, id int) (*domain.Listing, error)
	CreateListing(ctx context.Context, token string, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error)
	UpdateListing(ctx context.Context, token string, id int, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error)
	DeleteListing(ctx context.Context, token string, id int) error
}

// ListingService implements the client-side listing lifecycle: full-collection
// fetch with local filtering, and the owner mutations.
type ListingService struct {
	api ListingAPI
}

// NewListingService creates a ListingService with the given backend client.
func NewListingService(api ListingAPI) *ListingService {
	return &ListingService{api: api}
}

// Browse fetches the full collection and applies the filter locally:
// category equality (with "All" matching everything) and case-insensitive
// substring match on the title. No match yields an empty slice, not an error.
func (s *ListingService) Browse(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.browse", trace.WithAttributes(
		attribute.String("filter.category", f.Category),
	))
	defer span.End()

	all, err := s.api.Listings(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("browse listings: %w", err)
	}

	matched := make([]domain.Listing, 0, len(all))
	for _, l := range all {
		if Matches(l, f) {
			matched = append(matched, l)
		}
	}
	span.SetAttributes(attribute.Int("listings.matched", len(matched)))
	return matched, nil
}

// Matches reports whether a listing satisfies the filter.
func Matches(l domain.Listing, f domain.ListingFilter) bool {
	if f.Category != "" && f.Category != domain.CategoryAll && l.Category != f.Category {
		return false
	}
	if f.SearchText != "" &&
		!strings.Contains(strings.ToLower(l.Title), strings.ToLower(f.SearchText)) {
		return false
	}
	return true
}

// Get fetches a single listing, for the detail view and for seeding the
// edit-mode draft.
func (s *ListingService) Get(ctx context.Context, id int) (*domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.get", trace.WithAttributes(
		attribute.Int("listing.id", id),
	))
	defer span.End()

	l, err := s.api.Listing(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get listing %d: %w", id, err)
	}
	return l, nil
}

// Mine returns the listings owned by the given user, newest first as the
// backend orders them.
func (s *ListingService) Mine(ctx context.Context, userID int) ([]domain.Listing, error) {
	all, err := s.api.Listings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load own listings: %w", err)
	}
	mine := make([]domain.Listing, 0)
	for _, l := range all {
		if l.UserID == userID {
			mine = append(mine, l)
		}
	}
	return mine, nil
}

// Create submits a new listing under the session's bearer token.
func (s *ListingService) Create(ctx context.Context, token string, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.create")
	defer span.End()

	if token == "" {
		return nil, ErrNoSession
	}
	if err := validateDraft(draft); err != nil {
		span.SetAttributes(attribute.Bool("draft.valid", false))
		return nil, err
	}

	l, err := s.api.CreateListing(ctx, token, draft, img)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return l, nil
}

// Update replaces an existing listing. Ownership is enforced by the backend;
// the client only hides the affordance for non-owners.
func (s *ListingService) Update(ctx context.Context, token string, id int, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	ctx, span := middleware.StartSpan(ctx, "listings.update", trace.WithAttributes(
		attribute.Int("listing.id", id),
	))
	defer span.End()

	if token == "" {
		return nil, ErrNoSession
	}
	if err := validateDraft(draft); err != nil {
		span.SetAttributes(attribute.Bool("draft.valid", false))
		return nil, err
	}

	l, err := s.api.UpdateListing(ctx, token, id, draft, img)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update listing %d: %w", id, err)
	}
	return l, nil
}

// Delete removes a listing. The confirmed flag carries the user's explicit
// confirmation gesture: without it no network call is made and the listing
// is left unchanged.
func (s *ListingService) Delete(ctx context.Context, token string, id int, confirmed bool) error {
	ctx, span := middleware.StartSpan(ctx, "listings.delete", trace.WithAttributes(
		attribute.Int("listing.id", id),
		attribute.Bool("confirmed", confirmed),
	))
	defer span.End()

	if !confirmed {
		return ErrNotConfirmed
	}
	if token == "" {
		return ErrNoSession
	}

	if err := s.api.DeleteListing(ctx, token, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	return nil
}

func validateDraft(d domain.ListingDraft) error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidDraft)
	}
	if d.Price <= 0 {
		return fmt.Errorf("price must be greater than zero: %w", ErrInvalidDraft)
	}
	if d.Category != domain.CategoryProduct && d.Category != domain.CategoryService {
		return fmt.Errorf("category %q is not allowed: %w", d.Category, ErrInvalidDraft)
	}
	return nil
}
