package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/talalink/webapp/internal/core/domain"
)

// fakeListingAPI records calls and serves a canned collection.
type fakeListingAPI struct {
	collection []domain.Listing
	deletes    int
	creates    int
	updates    int
}

func (f *fakeListingAPI) Listings(ctx context.Context) ([]domain.Listing, error) {
	return f.collection, nil
}

func (f *fakeListingAPI) Listing(ctx context.Context, id int) (*domain.Listing, error) {
	for _, l := range f.collection {
		if l.ID == id {
			out := l
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeListingAPI) CreateListing(ctx context.Context, token string, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	f.creates++
	return &domain.Listing{ID: 99, Title: draft.Title}, nil
}

func (f *fakeListingAPI) UpdateListing(ctx context.Context, token string, id int, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	f.updates++
	return &domain.Listing{ID: id, Title: draft.Title}, nil
}

func (f *fakeListingAPI) DeleteListing(ctx context.Context, token string, id int) error {
	f.deletes++
	return nil
}

func sampleCollection() []domain.Listing {
	return []domain.Listing{
		{ID: 1, Title: "Solar Inverter Repair", Category: "Service", UserID: 7},
		{ID: 2, Title: "Handmade Leather Boots", Category: "Product", UserID: 8},
		{ID: 3, Title: "Custom Wood Coffee Table", Category: "Product", UserID: 7},
		{ID: 4, Title: "Laptop Motherboard Fix", Category: "Service", UserID: 9},
	}
}

func TestBrowseFilter(t *testing.T) {
	svc := NewListingService(&fakeListingAPI{collection: sampleCollection()})

	tests := []struct {
		name    string
		filter  domain.ListingFilter
		wantIDs []int
	}{
		{"no filter returns everything", domain.ListingFilter{}, []int{1, 2, 3, 4}},
		{"All category returns everything", domain.ListingFilter{Category: "All"}, []int{1, 2, 3, 4}},
		{"category equality", domain.ListingFilter{Category: "Service"}, []int{1, 4}},
		{"substring is case-insensitive", domain.ListingFilter{SearchText: "REPAIR"}, []int{1}},
		{"category and text combine", domain.ListingFilter{Category: "Product", SearchText: "wood"}, []int{3}},
		{"no match yields empty, not error", domain.ListingFilter{SearchText: "tractor"}, []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Browse(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("Browse returned error: %v", err)
			}
			if got == nil {
				t.Fatalf("Browse returned nil slice")
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("Expected %d listings, got %d", len(tc.wantIDs), len(got))
			}
			for i, want := range tc.wantIDs {
				if got[i].ID != want {
					t.Errorf("Position %d: expected listing %d, got %d", i, want, got[i].ID)
				}
			}
		})
	}
}

func TestMineFiltersByOwner(t *testing.T) {
	svc := NewListingService(&fakeListingAPI{collection: sampleCollection()})

	mine, err := svc.Mine(context.Background(), 7)
	if err != nil {
		t.Fatalf("Mine returned error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("Expected 2 owned listings, got %d", len(mine))
	}
	for _, l := range mine {
		if l.UserID != 7 {
			t.Errorf("Listing %d has owner %d, expected 7", l.ID, l.UserID)
		}
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := &fakeListingAPI{collection: sampleCollection()}
	svc := NewListingService(api)

	err := svc.Delete(context.Background(), "tok", 1, false)
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("Expected ErrNotConfirmed, got %v", err)
	}
	if api.deletes != 0 {
		t.Fatalf("Unconfirmed delete must not call the backend, got %d calls", api.deletes)
	}

	if err := svc.Delete(context.Background(), "tok", 1, true); err != nil {
		t.Fatalf("Confirmed delete failed: %v", err)
	}
	if api.deletes != 1 {
		t.Fatalf("Expected exactly one delete call, got %d", api.deletes)
	}
}

func TestDeleteRequiresToken(t *testing.T) {
	api := &fakeListingAPI{}
	svc := NewListingService(api)

	err := svc.Delete(context.Background(), "", 1, true)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession, got %v", err)
	}
	if api.deletes != 0 {
		t.Fatalf("Delete without token must not call the backend")
	}
}

func TestCreateValidatesDraftLocally(t *testing.T) {
	api := &fakeListingAPI{}
	svc := NewListingService(api)

	tests := []struct {
		name  string
		draft domain.ListingDraft
	}{
		{"empty title", domain.ListingDraft{Price: 100, Category: "Product"}},
		{"zero price", domain.ListingDraft{Title: "Pump", Category: "Product"}},
		{"negative price", domain.ListingDraft{Title: "Pump", Price: -5, Category: "Product"}},
		{"unknown category", domain.ListingDraft{Title: "Pump", Price: 100, Category: "Gadget"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "tok", tc.draft, domain.ImageSource{})
			if !errors.Is(err, ErrInvalidDraft) {
				t.Fatalf("Expected ErrInvalidDraft, got %v", err)
			}
		})
	}

	if api.creates != 0 {
		t.Fatalf("Invalid drafts must not reach the backend, got %d calls", api.creates)
	}

	draft := domain.ListingDraft{Title: "Pump Repair", Price: 2500, Category: "Service", Location: "Thika Town"}
	if _, err := svc.Create(context.Background(), "tok", draft, domain.ImageSource{}); err != nil {
		t.Fatalf("Valid draft rejected: %v", err)
	}
	if api.creates != 1 {
		t.Fatalf("Expected one create call, got %d", api.creates)
	}
}
