package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/talalink/webapp/internal/core/domain"
)

// Client talks to the marketplace REST backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// AuthResponse is the body returned by POST /login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Login exchanges credentials for a token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("login response missing token: %w", ErrBadResponse)
	}
	return &out, nil
}

// Register creates a new account. The backend sends a verification email;
// the account is inactive until GET /verify/:token is called.
func (c *Client) Register(ctx context.Context, username, email, password string, isArtisan bool) error {
	body := map[string]any{
		"username":   username,
		"email":      email,
		"password":   password,
		"is_artisan": isArtisan,
	}
	return c.doJSON(ctx, http.MethodPost, "/register", "", body, nil)
}

// Verify confirms an email verification token, activating the account.
func (c *Client) Verify(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodGet, "/verify/"+url.PathEscape(token), "", nil, nil)
}

// Listings fetches the full listing collection. Filtering happens client-side.
func (c *Client) Listings(ctx context.Context) ([]domain.Listing, error) {
	var out []domain.Listing
	if err := c.doJSON(ctx, http.MethodGet, "/listings", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Listing fetches a single listing by id.
func (c *Client) Listing(ctx context.Context, id int) (*domain.Listing, error) {
	var out domain.Listing
	if err := c.doJSON(ctx, http.MethodGet, "/listings/"+strconv.Itoa(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateListing submits a new listing draft under the given bearer token.
func (c *Client) CreateListing(ctx context.Context, token string, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	return c.submitListing(ctx, http.MethodPost, "/listings", token, draft, img)
}

// UpdateListing replaces the listing with the given id. Owner-only,
// enforced by the backend.
func (c *Client) UpdateListing(ctx context.Context, token string, id int, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	return c.submitListing(ctx, http.MethodPut, "/listings/"+strconv.Itoa(id), token, draft, img)
}

// DeleteListing removes the listing with the given id. Owner-only.
func (c *Client) DeleteListing(ctx context.Context, token string, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/listings/"+strconv.Itoa(id), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, nil)
}

// submitListing encodes the draft as multipart form data when a file is
// attached, otherwise as a plain urlencoded field set carrying image_url.
// The two image sources are mutually exclusive on the wire.
func (c *Client) submitListing(ctx context.Context, method, path, token string, draft domain.ListingDraft, img domain.ImageSource) (*domain.Listing, error) {
	var (
		body        bytes.Buffer
		contentType string
	)

	if img.File != nil {
		w := multipart.NewWriter(&body)
		fields := draftFields(draft)
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return nil, fmt.Errorf("encode field %s: %w", f[0], err)
			}
		}
		part, err := w.CreateFormFile("file", img.File.Name)
		if err != nil {
			return nil, fmt.Errorf("encode file part: %w", err)
		}
		if _, err := part.Write(img.File.Content); err != nil {
			return nil, fmt.Errorf("write file part: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finish multipart body: %w", err)
		}
		contentType = w.FormDataContentType()
	} else {
		form := url.Values{}
		for _, f := range draftFields(draft) {
			form.Set(f[0], f[1])
		}
		form.Set("image_url", img.URL)
		body.WriteString(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	var out domain.Listing
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func draftFields(d domain.ListingDraft) [][2]string {
	return [][2]string{
		{"title", d.Title},
		{"description", d.Description},
		{"price", strconv.FormatFloat(d.Price, 'f', -1, 64)},
		{"category", d.Category},
		{"location", d.Location},
	}
}

// doJSON builds a JSON request (body may be nil) and executes it.
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

// do executes the request and decodes the response into out (when non-nil).
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", req.Method, req.URL.Path, err, ErrConnectivity)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", ErrBadResponse)
	}

	log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
			// 401 and 404 keep their meaning even without a usable body.
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
				return &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return fmt.Errorf("status %d with undecodable error body: %w", resp.StatusCode, ErrBadResponse)
		}
		return &ServerError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ErrBadResponse)
	}
	return nil
}
