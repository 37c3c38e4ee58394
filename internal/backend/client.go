package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"rently/client/internal/models"
)

// Client talks to the remote Rently REST backend. It is safe for concurrent
// use. The bearer token is read from the token source on every request, so
// the client always sends the latest committed session token.
type Client struct {
	baseURL     string
	client      *http.Client
	logger      *logrus.Logger
	tokenSource func() string
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// SetTokenSource wires the session token into outgoing requests. The session
// store is constructed after the client, so this is set post-construction.
func (c *Client) SetTokenSource(fn func() string) {
	c.tokenSource = fn
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration request body.
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthResponse is the flattened session payload produced by the auth
// endpoints: the token alongside the user fields.
type AuthResponse struct {
	Token string `json:"token"`
	models.User
}

type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) Authenticate(creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(http.MethodPost, "/auth/authenticate", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CurrentUser() (*models.User, error) {
	var user models.User
	if err := c.do(http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(update ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := c.do(http.MethodPut, "/users/me", nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ChangePassword(currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(http.MethodPost, "/users/change-password", nil, body, nil)
}

func (c *Client) ListProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := c.do(http.MethodGet, "/properties", nil, nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

// SearchProperties queries the search endpoint. minSquareFeet is sent as a
// hint only; the backend does not honor it as a size filter, so callers must
// apply it themselves (see the search pipeline).
func (c *Client) SearchProperties(location string, propertyType models.PropertyType, minSquareFeet int) ([]models.Property, error) {
	query := url.Values{}
	if location != "" {
		query.Set("location", location)
	}
	if propertyType != "" && propertyType != models.TypeFilterAll {
		query.Set("type", string(propertyType))
	}
	if minSquareFeet > 0 {
		query.Set("minSquareFeet", strconv.Itoa(minSquareFeet))
	}

	var properties []models.Property
	if err := c.do(http.MethodGet, "/properties/search", query, nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (c *Client) MyProperties() ([]models.Property, error) {
	var properties []models.Property
	if err := c.do(http.MethodGet, "/properties/my", nil, nil, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (c *Client) GetProperty(id int64) (*models.Property, error) {
	var property models.Property
	if err := c.do(http.MethodGet, fmt.Sprintf("/properties/%d", id), nil, nil, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *Client) CreateProperty(property models.Property) (*models.Property, error) {
	var created models.Property
	if err := c.do(http.MethodPost, "/properties", nil, property, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProperty(id int64, property models.Property) (*models.Property, error) {
	var updated models.Property
	if err := c.do(http.MethodPut, fmt.Sprintf("/properties/%d", id), nil, property, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProperty(id int64) error {
	return c.do(http.MethodDelete, fmt.Sprintf("/properties/%d", id), nil, nil, nil)
}

// Predict fetches a fresh forecast for the property at the given horizon.
// Results are never cached across horizons.
func (c *Client) Predict(propertyID int64, years int) (*models.PredictionResult, error) {
	query := url.Values{}
	query.Set("years", strconv.Itoa(years))

	var prediction models.PredictionResult
	if err := c.do(http.MethodGet, fmt.Sprintf("/predict/%d", propertyID), query, nil, &prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}

// EnquiryRequest is the enquiry creation body. The backend takes the
// enquirer name as "name" on the way in but serializes it as "userName" in
// responses, so the request and response shapes are distinct.
type EnquiryRequest struct {
	PropertyID int64  `json:"propertyId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Message    string `json:"message"`
}

func (c *Client) CreateEnquiry(enquiry EnquiryRequest) (*models.Enquiry, error) {
	var created models.Enquiry
	if err := c.do(http.MethodPost, "/enquiries", nil, enquiry, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) OwnerEnquiries() ([]models.Enquiry, error) {
	var enquiries []models.Enquiry
	if err := c.do(http.MethodGet, "/enquiries/owner", nil, nil, &enquiries); err != nil {
		return nil, err
	}
	return enquiries, nil
}

func (c *Client) UpdateEnquiryStatus(id int64, status models.EnquiryStatus) error {
	query := url.Values{}
	query.Set("status", string(status))
	return c.do(http.MethodPatch, fmt.Sprintf("/enquiries/%d/status", id), query, nil, nil)
}

func (c *Client) AdminStats() (*models.AdminStats, error) {
	var stats models.AdminStats
	if err := c.do(http.MethodGet, "/admin/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) AdminUsers() ([]models.User, error) {
	var users []models.User
	if err := c.do(http.MethodGet, "/admin/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUserRole(userID int64, role models.Role) error {
	query := url.Values{}
	query.Set("role", string(role))
	return c.do(http.MethodPatch, fmt.Sprintf("/admin/users/%d/role", userID), query, nil, nil)
}

// do executes a request against the backend and decodes the response into
// out when it is non-nil. Failures are mapped to the client error taxonomy:
// transport failures become NetworkError, 401/403 become AuthError and other
// 4xx become ValidationError with the backend's message.
func (c *Client) do(method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Error("Backend request failed")
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp.StatusCode, data, method, path)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) mapStatus(status int, data []byte, method, path string) error {
	message := extractMessage(data)

	c.logger.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  status,
		"message": message,
	}).Warn("Backend rejected request")

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Message: message}
	case status < 500:
		return &ValidationError{Status: status, Message: message}
	default:
		return &NetworkError{Err: fmt.Errorf("server error: status %d", status)}
	}
}

func extractMessage(data []byte) string {
	var msg apiMessage
	if err := json.Unmarshal(data, &msg); err == nil {
		if msg.Message != "" {
			return msg.Message
		}
		if msg.Error != "" {
			return msg.Error
		}
	}
	return string(data)
}
