package domain

// CategoryAll is the filter value that matches every listing category.
const CategoryAll = "All"

// Listing categories accepted by the backend.
const (
	CategoryProduct = "Product"
	CategoryService = "Service"
)

// Listing is a marketplace entry for a product or service, owned by a user.
// Field names mirror the backend's JSON wire format.
type Listing struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Location    string  `json:"location"`
	UserID      int     `json:"user_id"`
	CreatedAt   string  `json:"created_at"`
}

// ListingFilter narrows a browse of the full collection. Zero values match
// everything: an empty or "All" category matches every category, and an empty
// search text matches every title.
type ListingFilter struct {
	Category   string
	SearchText string
}

// ListingDraft is the typed form state for creating or updating a listing.
// It deliberately has one named field per form input rather than a generic
// key-value bag.
type ListingDraft struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Location    string
}

// FileUpload is an image file selected in the listing form.
type FileUpload struct {
	Name        string
	ContentType string
	Content     []byte
}

// ImageSource is the image for a listing: either a URL or an uploaded file,
// never both. A non-nil File takes precedence and the URL must not be sent.
type ImageSource struct {
	URL  string
	File *FileUpload
}
