package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sossh/Work-Alone/internal/model"
	"github.com/sossh/Work-Alone/internal/store"
	ws "github.com/sossh/Work-Alone/internal/websocket"
)

type UserHandler struct {
	users    *store.UserStore
	sessions *store.SessionStore
	logs     *store.MessageLogStore
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewUserHandler(users *store.UserStore, sessions *store.SessionStore, logs *store.MessageLogStore, hub *ws.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		sessions: sessions,
		logs:     logs,
		hub:      hub,
		logger:   logger,
	}
}

// List handles GET /api/users. Results are ordered alert first so the
// dashboard surfaces users who need attention.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListWithStatus()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	if users == nil {
		users = []model.UserWithStatus{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber   string `json:"phone_number"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		DelayInterval int    `json:"delay_interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.PhoneNumber == "" || req.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number and first_name are required"})
		return
	}
	if !strings.HasPrefix(req.PhoneNumber, "+") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number must be in E.164 format"})
		return
	}

	existing, err := h.users.GetByPhone(req.PhoneNumber)
	if err != nil {
		h.logger.Error("check phone number", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check phone number"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a user with that phone number already exists"})
		return
	}

	user, err := h.users.Create(req.PhoneNumber, req.FirstName, req.LastName, req.DelayInterval)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	h.hub.UserEvent("created", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles PATCH /api/users/{id}. Only fields present in the body
// change.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		FirstName     *string `json:"first_name"`
		LastName      *string `json:"last_name"`
		PhoneNumber   *string `json:"phone_number"`
		DelayInterval *int    `json:"delay_interval"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.PhoneNumber != nil && !strings.HasPrefix(*req.PhoneNumber, "+") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number must be in E.164 format"})
		return
	}
	if req.DelayInterval != nil && *req.DelayInterval <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delay_interval must be positive"})
		return
	}

	user, err := h.users.Update(id, store.UpdateUserParams{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhoneNumber:   req.PhoneNumber,
		DelayInterval: req.DelayInterval,
	})
	if err != nil {
		h.logger.Error("update user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	h.hub.UserEvent("updated", user.ID)
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.users.Delete(id); err != nil {
		h.logger.Error("delete user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete user"})
		return
	}

	h.hub.UserEvent("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// RecentSession handles GET /api/users/{id}/sessions/recent.
func (h *UserHandler) RecentSession(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	sess, err := h.sessions.MostRecent(id)
	if err != nil {
		h.logger.Error("get recent session", "user_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no sessions"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Messages handles GET /api/users/{id}/messages.
func (h *UserHandler) Messages(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	logs, err := h.logs.ListForUser(id, 100)
	if err != nil {
		h.logger.Error("list messages", "user_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list messages"})
		return
	}
	if logs == nil {
		logs = []model.MessageLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
