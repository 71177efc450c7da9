package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/talalink/webapp/internal/core/domain"
)

func newClient(url string) *Client {
	return New(url, 2*time.Second)
}

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","user":{"id":7,"username":"jane","email":"jane@thika.ke"}}`))
	}))
	defer srv.Close()

	resp, err := newClient(srv.URL).Login(context.Background(), "jane@thika.ke", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token != "tok-1" || resp.User.ID != 7 || resp.User.Username != "jane" {
		t.Fatalf("Unexpected response: %+v", resp)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Login(context.Background(), "jane@thika.ke", "wrong")

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Expected ServerError, got %v", err)
	}
	if se.Message != "Invalid credentials" {
		t.Errorf("Expected verbatim server message, got %q", se.Message)
	}
	if se.Status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", se.Status)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("401 must satisfy errors.Is(err, ErrUnauthorized)")
	}
}

func TestConnectivityError(t *testing.T) {
	// Reserve a port, then close the listener so nothing answers.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newClient(srv.URL).Listings(context.Background())
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("Expected ErrConnectivity, got %v", err)
	}
}

func TestMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"this is": not json`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Listings(context.Background())
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("Expected ErrBadResponse, got %v", err)
	}
}

func TestListingNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Listing not found"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Listing(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func sampleDraft() domain.ListingDraft {
	return domain.ListingDraft{
		Title:       "Pump Repair",
		Description: "Fix leaking water pumps",
		Price:       2500,
		Category:    "Service",
		Location:    "Thika Town",
	}
}

func TestCreateListingWithFileIsMultipartWithoutURL(t *testing.T) {
	var (
		gotContentType string
		gotFields      map[string][]string
		gotFile        []byte
		gotFileName    string
		gotAuth        string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad body"}`))
			return
		}
		gotFields = r.MultipartForm.Value
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected a file part named %q: %v", "file", err)
		} else {
			defer f.Close()
			gotFileName = hdr.Filename
			buf := make([]byte, hdr.Size)
			f.Read(buf)
			gotFile = buf
		}
		w.Write([]byte(`{"id":99,"title":"Pump Repair"}`))
	}))
	defer srv.Close()

	img := domain.ImageSource{File: &domain.FileUpload{
		Name:        "pump.jpg",
		ContentType: "image/jpeg",
		Content:     []byte("jpegbytes"),
	}}
	created, err := newClient(srv.URL).CreateListing(context.Background(), "tok-1", sampleDraft(), img)
	if err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}
	if created.ID != 99 {
		t.Errorf("Expected created id 99, got %d", created.ID)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Errorf("Expected multipart content type, got %q", gotContentType)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
	if _, present := gotFields["image_url"]; present {
		t.Errorf("image_url must not be sent when a file is attached")
	}
	if got := gotFields["title"]; len(got) != 1 || got[0] != "Pump Repair" {
		t.Errorf("Expected title field, got %v", got)
	}
	if gotFileName != "pump.jpg" || string(gotFile) != "jpegbytes" {
		t.Errorf("File part mismatch: name=%q content=%q", gotFileName, gotFile)
	}
}

func TestCreateListingWithURLIsSimpleFieldSet(t *testing.T) {
	var gotContentType, gotImageURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("Expected urlencoded body: %v", err)
		}
		gotImageURL = r.PostFormValue("image_url")
		w.Write([]byte(`{"id":100}`))
	}))
	defer srv.Close()

	img := domain.ImageSource{URL: "https://example.com/pump.jpg"}
	if _, err := newClient(srv.URL).CreateListing(context.Background(), "tok-1", sampleDraft(), img); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Expected urlencoded content type, got %q", gotContentType)
	}
	if gotImageURL != "https://example.com/pump.jpg" {
		t.Errorf("Expected image_url field, got %q", gotImageURL)
	}
}

func TestDeleteListingSendsBearerToken(t *testing.T) {
	var gotMethod, gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer srv.Close()

	if err := newClient(srv.URL).DeleteListing(context.Background(), "tok-1", 42); err != nil {
		t.Fatalf("DeleteListing failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/listings/42" {
		t.Errorf("Unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Expected bearer token header, got %q", gotAuth)
	}
}

func TestVerifyEscapesToken(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	if err := newClient(srv.URL).Verify(context.Background(), "abc/..def"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if gotPath != "/verify/abc%2F..def" {
		t.Errorf("Expected escaped token path, got %q", gotPath)
	}
}
