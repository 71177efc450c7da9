// Package v1 contains the gin handlers rendering the web UI and processing
// its form submissions. Handlers bind typed form DTOs, call the logic layer,
// and translate its errors into inline page messages — nothing propagates to
// a crash boundary and nothing is retried automatically.
package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/talalink/webapp/internal/backend"
	"github.com/talalink/webapp/internal/core/domain"
	logicv1 "github.com/talalink/webapp/internal/logic/v1"
	"github.com/talalink/webapp/middleware"
)

// sessionCookieMaxAge keeps the browser session id for 30 days. The token
// inside the store expires on the backend's schedule, not the cookie's.
const sessionCookieMaxAge = 30 * 24 * 60 * 60

// maxUploadBytes caps listing photo uploads at 8 MiB.
const maxUploadBytes = 8 << 20

// Handler groups the HTTP handlers for the web UI.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	sessions *logicv1.SessionService
	listings *logicv1.ListingService
	repairs  *logicv1.MaintenanceService
	chats    *logicv1.ChatService
}

// NewHandler creates a Handler with the given services.
func NewHandler(sessions *logicv1.SessionService, listings *logicv1.ListingService, repairs *logicv1.MaintenanceService, chats *logicv1.ChatService) *Handler {
	return &Handler{sessions: sessions, listings: listings, repairs: repairs, chats: chats}
}

// RegisterRoutes registers all page and form routes on the engine. Protected
// routes sit behind the RequireSession guard; everything else is public.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Landing)
	r.GET("/home", h.Home)
	r.GET("/product/:id", h.ProductDetail)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/signup", h.ShowSignup)
	r.POST("/signup", h.Signup)
	r.GET("/verify/:token", h.VerifyEmail)
	r.POST("/logout", h.Logout)

	protected := r.Group("/")
	protected.Use(middleware.RequireSession())
	{
		protected.GET("/dashboard", h.Dashboard)
		protected.GET("/create-listing", h.ShowCreateListing)
		protected.POST("/create-listing", h.CreateListing)
		protected.GET("/create-listing/:id", h.ShowEditListing)
		protected.POST("/create-listing/:id", h.UpdateListing)
		protected.GET("/create-listing/:id/delete", h.ConfirmDeleteListing)
		protected.POST("/create-listing/:id/delete", h.DeleteListing)
		protected.GET("/maintenance", h.Maintenance)
		protected.POST("/maintenance/:id/advance", h.AdvanceRepair)
		protected.GET("/chat", h.Chat)
		protected.POST("/chat/:id/send", h.SendChatMessage)
	}

	// Unknown paths land on the landing page.
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/")
	})
}

// render wraps c.HTML, attaching the data every page expects: the current
// session (for the nav bar) and whether the footer is shown. The dashboard,
// maintenance and chat pages carry their own sidebar instead of a footer.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = middleware.CurrentSession(c)
	if _, ok := data["ShowFooter"]; !ok {
		data["ShowFooter"] = true
	}
	c.HTML(status, page, data)
}

// sid returns the browser session id, minting and setting the cookie when
// the visitor does not have one yet.
func (h *Handler) sid(c *gin.Context) string {
	if v, err := c.Cookie(middleware.SessionCookie); err == nil && v != "" {
		return v
	}
	v := uuid.NewString()
	c.SetCookie(middleware.SessionCookie, v, sessionCookieMaxAge, "/", "", false, true)
	return v
}

// clearSession drops both the stored session and the browser cookie.
func (h *Handler) clearSession(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookie); err == nil && sid != "" {
		if err := h.sessions.Logout(c.Request.Context(), sid); err != nil {
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("session clear failed")
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
}

// redirectIfAuthError clears the session and sends the user to the login
// page when the backend rejected the token. Returns true when it handled
// the error.
func (h *Handler) redirectIfAuthError(c *gin.Context, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
	return true
}

// userMessage maps an operation error onto the inline message shown to the
// user. Structured backend errors are surfaced verbatim; each taxonomy
// bucket keeps a distinct message.
func userMessage(err error) string {
	var se *backend.ServerError
	switch {
	case errors.As(err, &se):
		return se.Message
	case errors.Is(err, backend.ErrConnectivity):
		return "Could not connect to the server. Please try again."
	case errors.Is(err, backend.ErrNotFound):
		return "That listing could not be found."
	case errors.Is(err, backend.ErrBadResponse):
		return "The server sent an unexpected response. Please try again."
	case errors.Is(err, logicv1.ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters.", logicv1.MinPasswordLen)
	case errors.Is(err, logicv1.ErrInvalidDraft):
		return "Please check the listing details: a title, a positive price and a valid category are required."
	default:
		return "Something went wrong. Please try again."
	}
}

// Landing renders the public landing page.
func (h *Handler) Landing(c *gin.Context) {
	h.render(c, http.StatusOK, "landing", nil)
}

// Home renders the marketplace browse page with category and search filters
// applied client-side over the full collection.
func (h *Handler) Home(c *gin.Context) {
	filter := domain.ListingFilter{
		Category:   c.DefaultQuery("category", domain.CategoryAll),
		SearchText: c.Query("q"),
	}

	listings, err := h.listings.Browse(c.Request.Context(), filter)
	if err != nil {
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("browse failed")
		h.render(c, http.StatusOK, "home", gin.H{
			"Error":  userMessage(err),
			"Filter": filter,
		})
		return
	}

	h.render(c, http.StatusOK, "home", gin.H{
		"Listings": listings,
		"Filter":   filter,
	})
}

// ProductDetail renders a single listing.
func (h *Handler) ProductDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, backend.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.render(c, status, "product", gin.H{"Error": userMessage(err)})
		return
	}

	h.render(c, http.StatusOK, "product", gin.H{"Listing": listing})
}

// ShowLogin renders the login form.
func (h *Handler) ShowLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login", gin.H{"Form": LoginForm{}})
}

// Login handles the login form submission. On failure the page is
// re-rendered with the error message and the user stays on the form.
func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "login", gin.H{
			"Form":  form,
			"Error": "Email and password are required.",
		})
		return
	}

	sid := h.sid(c)
	_, err := h.sessions.Login(c.Request.Context(), sid, form.Email, form.Password)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("login failed")
		status := http.StatusOK
		var se *backend.ServerError
		if errors.As(err, &se) {
			status = se.Status
		}
		h.render(c, status, "login", gin.H{
			"Form":  form,
			"Error": userMessage(err),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout clears the session and returns to the landing page. There is no
// backend call; clearing local state always succeeds.
func (h *Handler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowSignup renders the signup form.
func (h *Handler) ShowSignup(c *gin.Context) {
	h.render(c, http.StatusOK, "signup", gin.H{"Form": SignupForm{}})
}

// Signup handles account creation. The password length precondition fails
// locally without touching the network; on success the user is pointed at
// the verification flow.
func (h *Handler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "signup", gin.H{
			"Form":  form,
			"Error": "Name, a valid email and a password are required.",
		})
		return
	}

	if err := h.sessions.Signup(c.Request.Context(), form.Username, form.Email, form.Password); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("signup failed")
		status := http.StatusOK
		if errors.Is(err, logicv1.ErrPasswordTooShort) {
			status = http.StatusBadRequest
		}
		h.render(c, status, "signup", gin.H{
			"Form":  form,
			"Error": userMessage(err),
		})
		return
	}

	h.render(c, http.StatusOK, "signup", gin.H{"Success": true})
}

// VerifyEmail confirms an email verification token and shows the outcome.
func (h *Handler) VerifyEmail(c *gin.Context) {
	err := h.sessions.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("verification failed")
		h.render(c, http.StatusOK, "verify", gin.H{"Failed": true})
		return
	}
	h.render(c, http.StatusOK, "verify", nil)
}

// Dashboard renders the artisan console: stat cards plus the user's own
// listings with edit and delete affordances.
func (h *Handler) Dashboard(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	var (
		mine    []domain.Listing
		loadErr string
	)
	if sess.User != nil {
		var err error
		mine, err = h.listings.Mine(c.Request.Context(), sess.User.ID)
		if err != nil {
			if h.redirectIfAuthError(c, err) {
				return
			}
			loadErr = userMessage(err)
		}
	}

	h.render(c, http.StatusOK, "dashboard", gin.H{
		"Listings":       mine,
		"ActiveListings": len(mine),
		"PendingRepairs": h.repairs.PendingCount(),
		"Error":          loadErr,
		"ShowFooter":     false,
	})
}

// ShowCreateListing renders the empty create form.
func (h *Handler) ShowCreateListing(c *gin.Context) {
	h.render(c, http.StatusOK, "listing_form", gin.H{
		"Form": ListingForm{Category: domain.CategoryProduct, ImageMode: ImageModeURL, Location: "Thika Town"},
	})
}

// ShowEditListing fetches the existing listing to seed the draft. A fetch
// failure leaves the form in an error-displaying state with no draft.
func (h *Handler) ShowEditListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Int("listing_id", id).Msg("edit seed failed")
		h.render(c, http.StatusOK, "listing_form", gin.H{
			"EditID":    id,
			"LoadError": "Could not fetch item details. Please check your connection.",
		})
		return
	}

	h.render(c, http.StatusOK, "listing_form", gin.H{
		"EditID": id,
		"Form":   seedListingForm(*listing),
	})
}

// CreateListing handles the create form submission.
func (h *Handler) CreateListing(c *gin.Context) {
	h.submitListing(c, 0)
}

// UpdateListing handles the edit form submission.
func (h *Handler) UpdateListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}
	h.submitListing(c, id)
}

// submitListing is the shared create/update path. editID == 0 means create.
// When a photo file is attached it becomes the image source and any URL in
// the form is not sent; the two sources are mutually exclusive.
func (h *Handler) submitListing(c *gin.Context, editID int) {
	renderForm := func(status int, data gin.H) {
		if editID != 0 {
			data["EditID"] = editID
		}
		h.render(c, status, "listing_form", data)
	}

	var form ListingForm
	if err := c.ShouldBind(&form); err != nil {
		renderForm(http.StatusBadRequest, gin.H{
			"Form":  form,
			"Error": "Please fill in all required fields with valid values.",
		})
		return
	}

	img, err := h.imageSource(c, form)
	if err != nil {
		renderForm(http.StatusBadRequest, gin.H{
			"Form":  form,
			"Error": "The selected photo could not be read. Please try another file.",
		})
		return
	}

	sess := middleware.CurrentSession(c)
	ctx := c.Request.Context()

	if editID == 0 {
		_, err = h.listings.Create(ctx, sess.Token, form.Draft(), img)
	} else {
		_, err = h.listings.Update(ctx, sess.Token, editID, form.Draft(), img)
	}
	if err != nil {
		if h.redirectIfAuthError(c, err) {
			return
		}
		log.Ctx(ctx).Warn().Err(err).Msg("listing submit failed")
		renderForm(http.StatusOK, gin.H{
			"Form":  form,
			"Error": userMessage(err),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/home")
}

// imageSource builds the draft's image source: the uploaded file when one
// was selected in file mode, otherwise the URL field.
func (h *Handler) imageSource(c *gin.Context, form ListingForm) (domain.ImageSource, error) {
	if form.ImageMode != ImageModeFile {
		return domain.ImageSource{URL: form.ImageURL}, nil
	}

	header, err := c.FormFile("photo")
	if err != nil {
		// File mode with no file selected falls back to the URL field.
		if errors.Is(err, http.ErrMissingFile) {
			return domain.ImageSource{URL: form.ImageURL}, nil
		}
		return domain.ImageSource{}, fmt.Errorf("read upload: %w", err)
	}
	if header.Size > maxUploadBytes {
		return domain.ImageSource{}, fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return domain.ImageSource{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.ImageSource{}, fmt.Errorf("read upload: %w", err)
	}

	return domain.ImageSource{File: &domain.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}}, nil
}

// ConfirmDeleteListing renders the explicit confirmation page. Deletion is
// irreversible, so nothing happens until the user confirms here.
func (h *Handler) ConfirmDeleteListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	listing, err := h.listings.Get(c.Request.Context(), id)
	if err != nil {
		h.render(c, http.StatusOK, "confirm_delete", gin.H{
			"EditID": id,
			"Error":  userMessage(err),
		})
		return
	}

	h.render(c, http.StatusOK, "confirm_delete", gin.H{
		"EditID":  id,
		"Listing": listing,
	})
}

// DeleteListing performs the delete once the confirmation gesture arrives.
// Without confirm=yes no backend call is made and the listing is unchanged.
func (h *Handler) DeleteListing(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/home")
		return
	}

	sess := middleware.CurrentSession(c)
	confirmed := c.PostForm("confirm") == "yes"

	err = h.listings.Delete(c.Request.Context(), sess.Token, id, confirmed)
	if err != nil {
		if errors.Is(err, logicv1.ErrNotConfirmed) {
			c.Redirect(http.StatusSeeOther, fmt.Sprintf("/create-listing/%d", id))
			return
		}
		if h.redirectIfAuthError(c, err) {
			return
		}
		log.Ctx(c.Request.Context()).Warn().Err(err).Int("listing_id", id).Msg("delete failed")
		h.render(c, http.StatusOK, "confirm_delete", gin.H{
			"EditID": id,
			"Error":  "Could not delete the item. Please try again.",
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/home")
}

// Maintenance renders the repair lifecycle hub with its two tabs.
func (h *Handler) Maintenance(c *gin.Context) {
	tab := c.DefaultQuery("tab", domain.RepairIncoming)
	if tab != domain.RepairIncoming && tab != domain.RepairOutgoing {
		tab = domain.RepairIncoming
	}

	h.render(c, http.StatusOK, "maintenance", gin.H{
		"Tab":        tab,
		"Tasks":      h.repairs.Tasks(tab),
		"ShowFooter": false,
	})
}

// AdvanceRepair moves a repair task to its next status.
func (h *Handler) AdvanceRepair(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		if _, err = h.repairs.Advance(id); err != nil {
			log.Ctx(c.Request.Context()).Warn().Err(err).Msg("advance repair failed")
		}
	}
	c.Redirect(http.StatusSeeOther, "/maintenance?tab="+c.DefaultQuery("tab", domain.RepairIncoming))
}

// Chat renders the mock chat page with the thread list and active thread.
func (h *Handler) Chat(c *gin.Context) {
	threads := h.chats.Threads()

	var active *domain.ChatThread
	if id, err := strconv.Atoi(c.Query("thread")); err == nil {
		active, _ = h.chats.Thread(id)
	}
	if active == nil && len(threads) > 0 {
		active = &threads[0]
	}

	h.render(c, http.StatusOK, "chat", gin.H{
		"Threads":    threads,
		"Active":     active,
		"ShowFooter": false,
	})
}

// SendChatMessage appends a message to a thread and returns to it.
func (h *Handler) SendChatMessage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err == nil {
		if err = h.chats.Send(id, c.PostForm("message")); err != nil {
			log.Ctx(c.Request.Context()).Warn().Err(err).Msg("chat send failed")
		}
	}
	c.Redirect(http.StatusSeeOther, "/chat?thread="+c.Param("id"))
}
