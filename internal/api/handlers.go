package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rently/client/internal/authz"
	"rently/client/internal/backend"
	"rently/client/internal/forecast"
	"rently/client/internal/models"
	"rently/client/internal/search"
	"rently/client/internal/session"
)

// Handler exposes the client core to the UI shell. Every gated operation
// consults the authorization gate before any backend call is made; the
// backend remains the authoritative enforcement point.
type Handler struct {
	sessions  *session.Store
	pipeline  *search.Pipeline
	forecasts *forecast.Service
	backend   *backend.Client
	logger    *logrus.Logger
}

func NewHandler(sessions *session.Store, pipeline *search.Pipeline, forecasts *forecast.Service, client *backend.Client, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		sessions:  sessions,
		pipeline:  pipeline,
		forecasts: forecasts,
		backend:   client,
		logger:    logger,
	}
}

// sessionView is the session as exposed to the UI. The token stays inside
// the session store.
type sessionView struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

func viewOf(s session.Session) sessionView {
	return sessionView{User: s.User, IsAuthenticated: s.IsAuthenticated}
}

func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(h.sessions.Current()))
}

func (h *Handler) Login(c *gin.Context) {
	var creds backend.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}

	sess, err := h.sessions.Login(creds)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (h *Handler) Register(c *gin.Context) {
	var req backend.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration payload"})
		return
	}

	sess, err := h.sessions.Register(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout()
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}

	var update backend.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile payload"})
		return
	}

	sess, err := h.sessions.UpdateProfile(update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (h *Handler) ChangePassword(c *gin.Context) {
	if !h.requireAuth(c) {
		return
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid password payload"})
		return
	}

	if err := h.sessions.ChangePassword(body.CurrentPassword, body.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProperties returns the pipeline's current filtered listing together
// with the active filter state and the staleness flag.
func (h *Handler) GetProperties(c *gin.Context) {
	result := h.pipeline.Current()

	response := gin.H{
		"properties": result.Properties,
		"stale":      result.Stale,
		"filters":    h.pipeline.State(),
	}
	if result.Err != nil {
		response["error"] = result.Err.Error()
	}
	c.JSON(http.StatusOK, response)
}

// UpdateSearch records a filter change. The fetch itself runs after the
// debounce quiet period; the UI polls GetProperties or subscribes for the
// committed result.
func (h *Handler) UpdateSearch(c *gin.Context) {
	var state models.SearchFilterState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter state"})
		return
	}

	h.pipeline.SetState(state)
	c.Status(http.StatusAccepted)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	property, err := h.backend.GetProperty(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) GetForecast(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	years := 5
	if raw := c.Query("years"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid years parameter"})
			return
		}
		years = parsed
	}

	view, err := h.forecasts.Forecast(id, years)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	if !h.allow(c, authz.ActionCreateListing, 0) {
		return
	}

	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}
	if err := property.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	created, err := h.backend.CreateProperty(property)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	existing, err := h.backend.GetProperty(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.allow(c, authz.ActionEditListing, existing.OwnerID) {
		return
	}

	var property models.Property
	if err := c.ShouldBindJSON(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}
	if err := property.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.backend.UpdateProperty(id, property)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	existing, err := h.backend.GetProperty(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !h.allow(c, authz.ActionDeleteListing, existing.OwnerID) {
		return
	}

	if err := h.backend.DeleteProperty(id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyProperties(c *gin.Context) {
	if !h.allow(c, authz.ActionCreateListing, 0) {
		return
	}

	properties, err := h.backend.MyProperties()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) CreateEnquiry(c *gin.Context) {
	if !h.allow(c, authz.ActionEnquire, 0) {
		return
	}

	var enquiry backend.EnquiryRequest
	if err := c.ShouldBindJSON(&enquiry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enquiry payload"})
		return
	}

	created, err := h.backend.CreateEnquiry(enquiry)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) OwnerEnquiries(c *gin.Context) {
	if !h.allow(c, authz.ActionViewEnquiries, 0) {
		return
	}

	enquiries, err := h.backend.OwnerEnquiries()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enquiries)
}

// UpdateEnquiryStatus enforces the monotonic forward transition rule before
// the backend is asked to change anything.
func (h *Handler) UpdateEnquiryStatus(c *gin.Context) {
	if !h.allow(c, authz.ActionViewEnquiries, 0) {
		return
	}

	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	next := models.EnquiryStatus(c.Query("status"))
	if next != models.EnquiryContacted && next != models.EnquiryClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enquiry status"})
		return
	}

	enquiries, err := h.backend.OwnerEnquiries()
	if err != nil {
		h.respondError(c, err)
		return
	}

	var current *models.Enquiry
	for i := range enquiries {
		if enquiries[i].ID == id {
			current = &enquiries[i]
			break
		}
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "enquiry not found"})
		return
	}
	if !current.Status.CanTransitionTo(next) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "enquiry status can only move forward",
		})
		return
	}

	if err := h.backend.UpdateEnquiryStatus(id, next); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminStats(c *gin.Context) {
	if !h.allow(c, authz.ActionAdminDashboard, 0) {
		return
	}

	stats, err := h.backend.AdminStats()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminUsers(c *gin.Context) {
	if !h.allow(c, authz.ActionManageUsers, 0) {
		return
	}

	users, err := h.backend.AdminUsers()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	// Self-targeting role changes are denied by the gate regardless of role.
	if !h.allow(c, authz.ActionChangeRole, id) {
		return
	}

	role := models.Role(c.Query("role"))
	if !role.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	if err := h.backend.UpdateUserRole(id, role); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) requireAuth(c *gin.Context) bool {
	sess := h.sessions.Current()
	if !sess.IsAuthenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return false
	}
	if h.sessions.TokenExpired() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
		return false
	}
	return true
}

// allow evaluates the gate for the current session. Denials are answered
// locally; no backend call is made.
func (h *Handler) allow(c *gin.Context, action authz.Action, resourceOwnerID int64) bool {
	sess := h.sessions.Current()
	if !authz.CanAccess(sess.Role(), sess.UserID(), action, resourceOwnerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return false
	}
	if sess.IsAuthenticated && h.sessions.TokenExpired() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
		return false
	}
	return true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var authErr *backend.AuthError
	var validationErr *backend.ValidationError
	var networkErr *backend.NetworkError

	switch {
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
	case errors.As(err, &validationErr):
		c.JSON(validationErr.Status, gin.H{"error": validationErr.Message})
	case errors.As(err, &networkErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unreachable, please try again"})
	default:
		h.logger.WithError(err).Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
