package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Pending-Status/CalendarMeet/internal/rest"
	"github.com/Pending-Status/CalendarMeet/pkg/interval"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string   `json:"uid"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	PhotoUrl    string   `json:"photoUrl"`
	Major       string   `json:"major"`
	Year        string   `json:"year"`
	Bio         string   `json:"bio"`
	Interests   []string `json:"interests"`
	Friends     []string `json:"friends"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type CreateUserRequest struct {
	Uid         string          `json:"uid"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	PhotoUrl    string          `json:"photoUrl"`
	Major       string          `json:"major"`
	Year        string          `json:"year"`
	Bio         string          `json:"bio"`
	Interests   json.RawMessage `json:"interests"`
}

type AddFriendRequest struct {
	FriendUid string `json:"friendUid"`
}

type RecommendationDTO struct {
	User            UserDTO  `json:"user"`
	SharedInterests []string `json:"sharedInterests"`
	Score           int      `json:"score"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{userService: userService}
}

// CreateUser godoc
// @Summary Create a user profile
// @Tags User
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "User already exists"
// @Router /api/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request CreateUserRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	interests, err := parseInterests(request.Interests)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	created, err := h.userService.CreateUser(r.Context(), User{
		Uid:         request.Uid,
		Email:       request.Email,
		DisplayName: request.DisplayName,
		PhotoUrl:    request.PhotoUrl,
		Major:       request.Major,
		Year:        request.Year,
		Bio:         request.Bio,
		Interests:   interests,
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create user")
		return
	}
	rest.WriteJSON(w, http.StatusCreated, userToDTO(created))
}

// CurrentUser godoc
// @Summary Get the calling user
// @Tags User
// @Produce json
// @Param X-User-Id header string true "Caller uid"
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No user"
// @Router /api/users/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to get current user")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(current))
}

// GetUser godoc
// @Summary Get a user
// @Tags User
// @Produce json
// @Param uid path string true "User uid"
// @Success 200 {object} UserDTO
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{uid} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]
	found, err := h.userService.GetUserByUid(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err, "Failed to get user")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(found))
}

// ListUsers godoc
// @Summary List users
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to list users")
		return
	}
	response := make([]UserDTO, 0, len(users))
	for _, u := range users {
		response = append(response, userToDTO(u))
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

// UpdateUser godoc
// @Summary Update a user profile
// @Description Partial update of displayName, photoUrl, major, year, bio and interests
// @Tags User
// @Accept json
// @Produce json
// @Param uid path string true "User uid"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{uid} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	var fields map[string]json.RawMessage
	if !rest.DecodeJSON(w, r, &fields) {
		return
	}
	update, err := parseUserUpdate(fields)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	updated, err := h.userService.UpdateUser(r.Context(), uid, update)
	if err != nil {
		writeServiceError(w, err, "Failed to update user")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

// AddFriend godoc
// @Summary Add a friend
// @Tags User
// @Accept json
// @Produce json
// @Param uid path string true "User uid"
// @Param friend body AddFriendRequest true "Friend"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{uid}/friends [post]
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	var request AddFriendRequest
	if !rest.DecodeJSON(w, r, &request) {
		return
	}
	updated, err := h.userService.AddFriend(r.Context(), uid, request.FriendUid)
	if err != nil {
		writeServiceError(w, err, "Failed to add friend")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

// RemoveFriend godoc
// @Summary Remove a friend
// @Tags User
// @Param uid path string true "User uid"
// @Param friendUid path string true "Friend uid"
// @Success 204 "No Content"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{uid}/friends/{friendUid} [delete]
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.userService.RemoveFriend(r.Context(), vars["uid"], vars["friendUid"]); err != nil {
		writeServiceError(w, err, "Failed to remove friend")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommendations godoc
// @Summary Recommend friends
// @Description Users who are not yet friends, ranked by shared interests
// @Tags User
// @Produce json
// @Param uid path string true "User uid"
// @Param limit query int false "Maximum number of recommendations"
// @Success 200 {array} RecommendationDTO
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{uid}/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	uid := mux.Vars(r)["uid"]

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	recommendations, err := h.userService.Recommendations(r.Context(), uid, limit)
	if err != nil {
		writeServiceError(w, err, "Failed to get recommendations")
		return
	}
	response := make([]RecommendationDTO, 0, len(recommendations))
	for _, recommendation := range recommendations {
		response = append(response, RecommendationDTO{
			User:            userToDTO(recommendation.User),
			SharedInterests: recommendation.SharedInterests,
			Score:           len(recommendation.SharedInterests),
		})
	}
	rest.WriteJSON(w, http.StatusOK, response)
}

func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "No user selected", "send the X-User-Id header")
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrUserAlreadyExists):
		rest.WriteError(w, http.StatusConflict, "User already exists", "")
	case errors.Is(err, ErrInvalidUser):
		rest.WriteError(w, http.StatusBadRequest, "Invalid user", err.Error())
	default:
		log.Errorf("%s: %v", message, err)
		rest.WriteError(w, http.StatusInternalServerError, message, "")
	}
}

func parseInterests(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}, nil
	}
	var interests []string
	if err := json.Unmarshal(trimmed, &interests); err != nil {
		return nil, errors.New("interests must be a string array")
	}
	return interests, nil
}

func parseUserUpdate(fields map[string]json.RawMessage) (UserUpdate, error) {
	var update UserUpdate
	for name, raw := range fields {
		var target **string
		switch name {
		case "displayName":
			target = &update.DisplayName
		case "photoUrl":
			target = &update.PhotoUrl
		case "major":
			target = &update.Major
		case "year":
			target = &update.Year
		case "bio":
			target = &update.Bio
		case "interests":
			interests, err := parseInterests(raw)
			if err != nil {
				return UserUpdate{}, err
			}
			update.Interests = &interests
			continue
		default:
			log.Debugf("Ignoring user field %q", name)
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return UserUpdate{}, errors.New(name + " must be a string")
		}
		*target = &value
	}
	return update, nil
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Uid:         user.Uid,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoUrl:    user.PhotoUrl,
		Major:       user.Major,
		Year:        user.Year,
		Bio:         user.Bio,
		Interests:   nonNil(user.Interests),
		Friends:     nonNil(user.Friends),
		CreatedAt:   interval.FormatISO(user.CreatedAt),
		UpdatedAt:   interval.FormatISO(user.UpdatedAt),
	}
}
