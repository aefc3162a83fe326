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

type ContactHandler struct {
	contacts *store.ContactStore
	users    *store.UserStore
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewContactHandler(contacts *store.ContactStore, users *store.UserStore, hub *ws.Hub, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		users:    users,
		hub:      hub,
		logger:   logger,
	}
}

// userFromPath resolves the {id} path segment to a user, writing the
// error response itself when it fails.
func (h *ContactHandler) userFromPath(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}
	user, err := h.users.GetByID(id)
	if err != nil {
		h.logger.Error("get user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return nil, false
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return nil, false
	}
	return user, true
}

// List handles GET /api/users/{id}/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	contacts, err := h.contacts.ListForUser(user.ID)
	if err != nil {
		h.logger.Error("list contacts", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list contacts"})
		return
	}
	if contacts == nil {
		contacts = []model.EscalationContact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

// Create handles POST /api/users/{id}/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromPath(w, r)
	if !ok {
		return
	}

	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.FirstName == "" || req.PhoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "first_name and phone_number are required"})
		return
	}
	if !strings.HasPrefix(req.PhoneNumber, "+") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number must be in E.164 format"})
		return
	}

	existing, err := h.contacts.GetByUserAndPhone(user.ID, req.PhoneNumber)
	if err != nil {
		h.logger.Error("check contact", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check contact"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "that phone number is already a contact for this user"})
		return
	}

	contact, err := h.contacts.Create(user.ID, req.FirstName, req.LastName, req.PhoneNumber)
	if err != nil {
		h.logger.Error("create contact", "user_id", user.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create contact"})
		return
	}

	h.hub.ContactEvent("created", contact.ID, user.ID)
	writeJSON(w, http.StatusCreated, contact)
}

// Update handles PATCH /api/users/{id}/contacts/{contact_id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromPath(w, r)
	if !ok {
		return
	}
	contactID, err := parseIDParam(r, "contact_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contact id"})
		return
	}

	existing, err := h.contacts.GetByID(contactID)
	if err != nil {
		h.logger.Error("get contact", "id", contactID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get contact"})
		return
	}
	if existing == nil || existing.ContactOf != user.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "contact not found"})
		return
	}

	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.PhoneNumber != nil && !strings.HasPrefix(*req.PhoneNumber, "+") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number must be in E.164 format"})
		return
	}

	contact, err := h.contacts.Update(contactID, store.UpdateContactParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.logger.Error("update contact", "id", contactID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update contact"})
		return
	}

	h.hub.ContactEvent("updated", contactID, user.ID)
	writeJSON(w, http.StatusOK, contact)
}

// Delete handles DELETE /api/users/{id}/contacts/{contact_id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userFromPath(w, r)
	if !ok {
		return
	}
	contactID, err := parseIDParam(r, "contact_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid contact id"})
		return
	}

	existing, err := h.contacts.GetByID(contactID)
	if err != nil {
		h.logger.Error("get contact", "id", contactID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get contact"})
		return
	}
	if existing == nil || existing.ContactOf != user.ID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "contact not found"})
		return
	}

	if err := h.contacts.Delete(contactID); err != nil {
		h.logger.Error("delete contact", "id", contactID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete contact"})
		return
	}

	h.hub.ContactEvent("deleted", contactID, user.ID)
	w.WriteHeader(http.StatusNoContent)
}
