package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rently/client/internal/models"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, 5*time.Second, logrus.New())
	return client, server
}

func TestClient_Authenticate(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/authenticate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     "jwt-token",
			"id":        7,
			"firstName": "Ada",
			"email":     "ada@example.com",
			"role":      "OWNER",
		})
	}))
	defer server.Close()

	resp, err := client.Authenticate(Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "jwt-token", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.Equal(t, models.RoleOwner, resp.User.Role)
}

func TestClient_BearerToken(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-xyz", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.User{ID: 1})
	}))
	defer server.Close()

	client.SetTokenSource(func() string { return "token-xyz" })

	_, err := client.CurrentUser()
	require.NoError(t, err)
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.Property{})
	}))
	defer server.Close()

	client.SetTokenSource(func() string { return "" })

	_, err := client.ListProperties()
	require.NoError(t, err)
}

func TestClient_SearchQuery(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/properties/search", r.URL.Path)
		assert.Equal(t, "amsterdam", r.URL.Query().Get("location"))
		assert.Equal(t, "VILLA", r.URL.Query().Get("type"))
		assert.Equal(t, "1000", r.URL.Query().Get("minSquareFeet"))
		json.NewEncoder(w).Encode([]models.Property{{ID: 1}})
	}))
	defer server.Close()

	properties, err := client.SearchProperties("amsterdam", models.PropertyTypeVilla, 1000)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
}

func TestClient_SearchOmitsEmptyFilters(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.False(t, query.Has("location"))
		assert.False(t, query.Has("type"))
		json.NewEncoder(w).Encode([]models.Property{})
	}))
	defer server.Close()

	_, err := client.SearchProperties("", models.TypeFilterAll, 0)
	require.NoError(t, err)
}

func TestClient_Predict(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/42", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("years"))
		json.NewEncoder(w).Encode(models.PredictionResult{
			EstimatedPrice:         250000,
			AnnualAppreciationRate: 6.5,
			MarketTrend:            "Up",
		})
	}))
	defer server.Close()

	prediction, err := client.Predict(42, 3)
	require.NoError(t, err)
	assert.Equal(t, 250000.0, prediction.EstimatedPrice)
	assert.Equal(t, 6.5, prediction.AnnualAppreciationRate)
}

func TestClient_CreateEnquirySendsNameField(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/enquiries", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bob", body["name"])
		assert.NotContains(t, body, "userName")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":         3,
			"propertyId": 12,
			"userName":   "Bob",
			"status":     "PENDING",
		})
	}))
	defer server.Close()

	created, err := client.CreateEnquiry(EnquiryRequest{
		PropertyID: 12,
		Name:       "Bob",
		Email:      "bob@example.com",
		Message:    "Is this still available?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", created.UserName)
}

func TestClient_OwnerEnquiriesDecodesResponseShape(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enquiries/owner", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]interface{}{{
			"id":            3,
			"propertyId":    12,
			"propertyTitle": "Canal-side Apartment",
			"userName":      "Bob",
			"email":         "bob@example.com",
			"status":        "PENDING",
		}})
	}))
	defer server.Close()

	enquiries, err := client.OwnerEnquiries()
	require.NoError(t, err)
	require.Len(t, enquiries, 1)
	assert.Equal(t, "Bob", enquiries[0].UserName)
	assert.Equal(t, "Canal-side Apartment", enquiries[0].PropertyTitle)
	assert.Equal(t, models.EnquiryPending, enquiries[0].Status)
}

func TestClient_EnquiryStatusQuery(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/enquiries/9/status", r.URL.Path)
		assert.Equal(t, "CONTACTED", r.URL.Query().Get("status"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := client.UpdateEnquiryStatus(9, models.EnquiryContacted)
	require.NoError(t, err)
}

func TestClient_UpdateUserRoleQuery(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/users/5/role", r.URL.Path)
		assert.Equal(t, "OWNER", r.URL.Query().Get("role"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, client.UpdateUserRole(5, models.RoleOwner))
}

func TestClient_AuthErrorMapping(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	}))
	defer server.Close()

	_, err := client.Authenticate(Credentials{})
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid credentials", authErr.Message)
}

func TestClient_ValidationErrorMapping(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "price must be positive"})
	}))
	defer server.Close()

	_, err := client.CreateProperty(models.Property{})
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, http.StatusBadRequest, validationErr.Status)
	assert.Equal(t, "price must be positive", validationErr.Message)
}

func TestClient_NetworkErrorMapping(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := client.ListProperties()
	require.Error(t, err)

	var networkErr *NetworkError
	assert.ErrorAs(t, err, &networkErr)
}

func TestClient_ParseErrorWrapsCause(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := client.CurrentUser()
	require.Error(t, err)

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestClient_ServerErrorIsNetworkError(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.ListProperties()
	require.Error(t, err)

	var networkErr *NetworkError
	assert.ErrorAs(t, err, &networkErr)
}
