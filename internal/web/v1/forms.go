package v1

import (
	"strconv"

	"github.com/talalink/webapp/internal/core/domain"
)

// Image source modes for the listing form toggle.
const (
	ImageModeURL  = "url"
	ImageModeFile = "file"
)

// LoginForm is the typed draft for the login page.
type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// SignupForm is the typed draft for the signup page. The minimum password
// length is enforced by the logic layer before any network call.
type SignupForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

// ListingForm is the typed draft for the create/edit listing page. One named
// field per input; the uploaded file travels separately as multipart content.
type ListingForm struct {
	Title       string  `form:"title" binding:"required"`
	Description string  `form:"description" binding:"required"`
	Price       float64 `form:"price" binding:"required,gt=0"`
	Category    string  `form:"category" binding:"required,oneof=Product Service"`
	Location    string  `form:"location" binding:"required"`
	ImageMode   string  `form:"image_mode"`
	ImageURL    string  `form:"image_url"`
}

// Draft converts the form into the domain draft submitted to the backend.
func (f ListingForm) Draft() domain.ListingDraft {
	return domain.ListingDraft{
		Title:       f.Title,
		Description: f.Description,
		Price:       f.Price,
		Category:    f.Category,
		Location:    f.Location,
	}
}

// PriceString renders the price for the form input, empty when unset.
func (f ListingForm) PriceString() string {
	if f.Price == 0 {
		return ""
	}
	return strconv.FormatFloat(f.Price, 'f', -1, 64)
}

// seedListingForm pre-populates the edit-mode draft from an existing listing.
func seedListingForm(l domain.Listing) ListingForm {
	return ListingForm{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Location:    l.Location,
		ImageMode:   ImageModeURL,
		ImageURL:    l.ImageURL,
	}
}
