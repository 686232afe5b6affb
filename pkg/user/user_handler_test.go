package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *UserServiceImpl) {
	t.Helper()
	service := NewUserService(NewStubUserRepository())
	handler := NewHandler(service)
	router := mux.NewRouter()
	router.HandleFunc("/api/users", handler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users", handler.ListUsers).Methods("GET")
	router.HandleFunc("/api/users/current", handler.CurrentUser).Methods("GET")
	router.HandleFunc("/api/users/{uid}", handler.GetUser).Methods("GET")
	router.HandleFunc("/api/users/{uid}", handler.UpdateUser).Methods("PUT")
	router.HandleFunc("/api/users/{uid}/friends", handler.AddFriend).Methods("POST")
	router.HandleFunc("/api/users/{uid}/friends/{friendUid}", handler.RemoveFriend).Methods("DELETE")
	router.HandleFunc("/api/users/{uid}/recommendations", handler.Recommendations).Methods("GET")
	return router, service
}

func doRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newRequest(method, target, body string) *http.Request {
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func TestHandler_CreateUser(t *testing.T) {
	t.Run("should create user", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		body := `{"uid":"alice","email":"alice@example.com","displayName":"Alice","major":"CS","interests":["chess"]}`

		w := doRequest(router, newRequest(http.MethodPost, "/api/users", body))

		require.Equal(t, http.StatusCreated, w.Code)
		var created UserDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, "alice", created.Uid)
		assert.Equal(t, "CS", created.Major)
		assert.Equal(t, []string{"chess"}, created.Interests)
		assert.Equal(t, []string{}, created.Friends)
	})

	t.Run("should return conflict for existing user", func(t *testing.T) {
		router, service := setupHandlerTest(t)
		createUser(t, context.Background(), service, "alice")
		body := `{"uid":"alice","email":"new@example.com","displayName":"Alice"}`

		w := doRequest(router, newRequest(http.MethodPost, "/api/users", body))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	testCases := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"uid":`, "Invalid request body format"},
		{"interests not an array", `{"uid":"a","email":"a@example.com","displayName":"A","interests":"chess"}`, "interests must be a string array"},
		{"interests with numbers", `{"uid":"a","email":"a@example.com","displayName":"A","interests":[1,2]}`, "interests must be a string array"},
		{"missing display name", `{"uid":"a","email":"a@example.com"}`, "Invalid user"},
	}
	for _, tc := range testCases {
		t.Run("should return bad request for "+tc.name, func(t *testing.T) {
			router, _ := setupHandlerTest(t)

			w := doRequest(router, newRequest(http.MethodPost, "/api/users", tc.body))

			require.Equal(t, http.StatusBadRequest, w.Code)
			var errResponse rest.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&errResponse))
			assert.Equal(t, tc.message, errResponse.Error)
		})
	}
}

func TestHandler_CurrentUser(t *testing.T) {
	router, service := setupHandlerTest(t)
	createUser(t, context.Background(), service, "alice")

	w := doRequest(router, newRequest(http.MethodGet, "/api/users/current", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := newRequest(http.MethodGet, "/api/users/current", "")
	req = req.WithContext(WithUser(req.Context(), User{Uid: "alice"}))
	w = doRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"alice"`)
}

func TestHandler_GetAndUpdateUser(t *testing.T) {
	router, service := setupHandlerTest(t)
	createUser(t, context.Background(), service, "alice", "chess")

	w := doRequest(router, newRequest(http.MethodGet, "/api/users/ghost", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, newRequest(http.MethodPut, "/api/users/alice", `{"bio":"Hello","interests":["go"],"email":"ignored@example.com"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var updated UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, "Hello", updated.Bio)
	assert.Equal(t, []string{"go"}, updated.Interests)
	assert.Equal(t, "alice@example.com", updated.Email)

	w = doRequest(router, newRequest(http.MethodPut, "/api/users/alice", `{"major":42}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, newRequest(http.MethodGet, "/api/users", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var users []UserDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&users))
	assert.Len(t, users, 1)
}

func TestHandler_Friends(t *testing.T) {
	router, service := setupHandlerTest(t)
	ctx := context.Background()
	createUser(t, ctx, service, "alice", "chess")
	createUser(t, ctx, service, "bob", "chess")
	createUser(t, ctx, service, "carol")

	w := doRequest(router, newRequest(http.MethodGet, "/api/users/alice/recommendations?limit=1", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var recommendations []RecommendationDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&recommendations))
	require.Len(t, recommendations, 1)
	assert.Equal(t, "bob", recommendations[0].User.Uid)
	assert.Equal(t, 1, recommendations[0].Score)

	w = doRequest(router, newRequest(http.MethodPost, "/api/users/alice/friends", `{"friendUid":"bob"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"friends":["bob"]`)

	w = doRequest(router, newRequest(http.MethodPost, "/api/users/alice/friends", `{"friendUid":"alice"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, newRequest(http.MethodGet, "/api/users/alice/recommendations", ""))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"uid":"bob"`)

	w = doRequest(router, newRequest(http.MethodDelete, "/api/users/alice/friends/bob", ""))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, newRequest(http.MethodGet, "/api/users/alice/recommendations?limit=x", ""))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
