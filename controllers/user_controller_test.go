package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vee4/vee4-order-api/models"
)

func TestCreateUser(t *testing.T) {
	db, _ := setupControllerTest(t)

	tests := []struct {
		name           string
		auth0ID        string
		roleClaim      string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		expectedRole   string
	}{
		{
			name:      "create customer profile",
			auth0ID:   "auth0|newcustomer",
			roleClaim: "",
			requestBody: map[string]interface{}{
				"name":    "New Customer",
				"email":   "new@example.com",
				"company": "New Co",
				"phone":   "555-0100",
			},
			expectedStatus: http.StatusCreated,
			expectedRole:   models.RoleCustomer,
		},
		{
			name:      "admin role claim is honored",
			auth0ID:   "auth0|newadmin",
			roleClaim: models.RoleAdmin,
			requestBody: map[string]interface{}{
				"name":  "New Admin",
				"email": "admin@example.com",
			},
			expectedStatus: http.StatusCreated,
			expectedRole:   models.RoleAdmin,
		},
		{
			name:      "unknown role claim falls back to customer",
			auth0ID:   "auth0|weirdclaim",
			roleClaim: "superuser",
			requestBody: map[string]interface{}{
				"name":  "Weird Claim",
				"email": "weird@example.com",
			},
			expectedStatus: http.StatusCreated,
			expectedRole:   models.RoleCustomer,
		},
		{
			name:      "missing name",
			auth0ID:   "auth0|noname",
			roleClaim: "",
			requestBody: map[string]interface{}{
				"email": "noname@example.com",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:      "invalid email",
			auth0ID:   "auth0|bademail",
			roleClaim: "",
			requestBody: map[string]interface{}{
				"name":  "Bad Email",
				"email": "not-an-email",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/users",
				mockAuthMiddleware(tt.auth0ID, tt.roleClaim),
				CreateUser,
			)

			req := jsonRequest(t, http.MethodPost, "/users", tt.requestBody)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				assertErrorCode(t, w, tt.expectedError)
				return
			}

			var user models.User
			require.NoError(t, db.Where("auth0_id = ?", tt.auth0ID).First(&user).Error)
			assert.Equal(t, tt.expectedRole, user.Role)
			assert.Equal(t, tt.requestBody["name"], user.Name)
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	db, _ := setupControllerTest(t)
	existing := seedCustomer(t, db)

	router := setupTestRouter()
	router.POST("/users",
		mockAuthMiddleware(existing.Auth0ID, ""),
		CreateUser,
	)

	req := jsonRequest(t, http.MethodPost, "/users", map[string]interface{}{
		"name":  "Duplicate",
		"email": "duplicate@example.com",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "USER_EXISTS")
}

func TestGetMyProfile(t *testing.T) {
	db, _ := setupControllerTest(t)
	customer := seedCustomer(t, db)

	router := setupTestRouter()
	router.GET("/users/me",
		mockAuthMiddleware(customer.Auth0ID, models.RoleCustomer),
		GetMyProfile,
	)

	req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, customer.Email, data["email"])
	assert.Equal(t, customer.Company, data["company"])
}

func TestGetMyProfile_NotFound(t *testing.T) {
	setupControllerTest(t)

	router := setupTestRouter()
	router.GET("/users/me",
		mockAuthMiddleware("auth0|ghost", models.RoleCustomer),
		GetMyProfile,
	)

	req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, w, "USER_NOT_FOUND")
}

func TestUpdateMyProfile(t *testing.T) {
	db, _ := setupControllerTest(t)
	customer := seedCustomer(t, db)

	router := setupTestRouter()
	router.PUT("/users/me",
		mockAuthMiddleware(customer.Auth0ID, models.RoleCustomer),
		UpdateMyProfile,
	)

	req := jsonRequest(t, http.MethodPut, "/users/me", map[string]interface{}{
		"company": "Renamed Industries",
		"phone":   "555-0199",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	require.NoError(t, db.First(&updated, customer.ID).Error)
	assert.Equal(t, "Renamed Industries", updated.Company)
	assert.Equal(t, "555-0199", updated.Phone)
	// Untouched fields keep their values.
	assert.Equal(t, customer.Name, updated.Name)
	assert.Equal(t, customer.Email, updated.Email)
}

func TestUpdateMyProfile_DuplicateEmail(t *testing.T) {
	db, _ := setupControllerTest(t)
	customer := seedCustomer(t, db)
	other := seedCustomer(t, db)

	router := setupTestRouter()
	router.PUT("/users/me",
		mockAuthMiddleware(customer.Auth0ID, models.RoleCustomer),
		UpdateMyProfile,
	)

	req := jsonRequest(t, http.MethodPut, "/users/me", map[string]interface{}{
		"email": other.Email,
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assertErrorCode(t, w, "EMAIL_EXISTS")
}
