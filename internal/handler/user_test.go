package handler

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/sossh/Work-Alone/internal/database"
	"github.com/sossh/Work-Alone/internal/model"
	"github.com/sossh/Work-Alone/internal/store"
	ws "github.com/sossh/Work-Alone/internal/websocket"
)

type api struct {
	userH    *UserHandler
	contactH *ContactHandler
	users    *store.UserStore
}

func setupAPI(t *testing.T) *api {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	contacts := store.NewContactStore(db)
	logs := store.NewMessageLogStore(db)
	hub := ws.NewHub(slog.Default())
	logger := testLogger()

	return &api{
		userH:    NewUserHandler(users, sessions, logs, hub, logger),
		contactH: NewContactHandler(contacts, users, hub, logger),
		users:    users,
	}
}

func TestUserCreateAndGet(t *testing.T) {
	a := setupAPI(t)

	req := httptest.NewRequest("POST", "/api/users",
		strings.NewReader(`{"phone_number":"+15551230001","first_name":"Alice","last_name":"Chen","delay_interval":45}`))
	rec := httptest.NewRecorder()
	a.userH.Create(rec, req)

	if rec.Code != 201 {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created user: %v", err)
	}
	if created.DelayInterval != 45 {
		t.Errorf("delay interval = %d, want 45", created.DelayInterval)
	}

	req = httptest.NewRequest("GET", "/api/users/0", nil)
	req.SetPathValue("id", strconv.FormatInt(created.ID, 10))
	rec = httptest.NewRecorder()
	a.userH.Get(rec, req)
	if rec.Code != 200 {
		t.Fatalf("get status = %d", rec.Code)
	}
}

func TestUserCreateValidation(t *testing.T) {
	a := setupAPI(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, 400},
		{"missing phone", `{"first_name":"Alice"}`, 400},
		{"non e164 phone", `{"phone_number":"5551230001","first_name":"Alice"}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			a.userH.Create(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUserCreateDuplicatePhone(t *testing.T) {
	a := setupAPI(t)
	if _, err := a.users.Create("+15551230001", "Alice", "Chen", 30); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/users",
		strings.NewReader(`{"phone_number":"+15551230001","first_name":"Other"}`))
	rec := httptest.NewRecorder()
	a.userH.Create(rec, req)
	if rec.Code != 409 {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestUserPartialUpdate(t *testing.T) {
	a := setupAPI(t)
	u, err := a.users.Create("+15551230001", "Alice", "Chen", 30)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	req := httptest.NewRequest("PATCH", "/api/users/0", strings.NewReader(`{"delay_interval":60}`))
	req.SetPathValue("id", strconv.FormatInt(u.ID, 10))
	rec := httptest.NewRecorder()
	a.userH.Update(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var updated model.User
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.DelayInterval != 60 {
		t.Errorf("delay interval = %d, want 60", updated.DelayInterval)
	}
	// Untouched fields keep their values.
	if updated.FirstName != "Alice" || updated.PhoneNumber != "+15551230001" {
		t.Errorf("unrelated fields changed: %+v", updated)
	}
}

func TestUserUpdateNotFound(t *testing.T) {
	a := setupAPI(t)

	req := httptest.NewRequest("PATCH", "/api/users/999", strings.NewReader(`{"first_name":"X"}`))
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	a.userH.Update(rec, req)
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUserListOrdersAlertFirst(t *testing.T) {
	a := setupAPI(t)
	if _, err := a.users.Create("+15551230001", "Idle", "User", 30); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/users", nil)
	rec := httptest.NewRecorder()
	a.userH.List(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var listed []model.UserWithStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != model.SessionInactive {
		t.Errorf("listing = %+v", listed)
	}
}

func TestContactCRUD(t *testing.T) {
	a := setupAPI(t)
	u, err := a.users.Create("+15551230001", "Alice", "Chen", 30)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	uid := strconv.FormatInt(u.ID, 10)

	// Create
	req := httptest.NewRequest("POST", "/api/users/0/contacts",
		strings.NewReader(`{"first_name":"Bob","last_name":"Lee","phone_number":"+15559990001"}`))
	req.SetPathValue("id", uid)
	rec := httptest.NewRecorder()
	a.contactH.Create(rec, req)
	if rec.Code != 201 {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var contact model.EscalationContact
	json.Unmarshal(rec.Body.Bytes(), &contact)

	// Duplicate phone for same user conflicts.
	req = httptest.NewRequest("POST", "/api/users/0/contacts",
		strings.NewReader(`{"first_name":"Bob2","phone_number":"+15559990001"}`))
	req.SetPathValue("id", uid)
	rec = httptest.NewRecorder()
	a.contactH.Create(rec, req)
	if rec.Code != 409 {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	// Partial update
	req = httptest.NewRequest("PATCH", "/api/users/0/contacts/0", strings.NewReader(`{"last_name":"Nguyen"}`))
	req.SetPathValue("id", uid)
	req.SetPathValue("contact_id", strconv.FormatInt(contact.ID, 10))
	rec = httptest.NewRecorder()
	a.contactH.Update(rec, req)
	if rec.Code != 200 {
		t.Fatalf("update status = %d", rec.Code)
	}
	var updated model.EscalationContact
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.LastName != "Nguyen" || updated.FirstName != "Bob" {
		t.Errorf("updated contact = %+v", updated)
	}

	// Delete
	req = httptest.NewRequest("DELETE", "/api/users/0/contacts/0", nil)
	req.SetPathValue("id", uid)
	req.SetPathValue("contact_id", strconv.FormatInt(contact.ID, 10))
	rec = httptest.NewRecorder()
	a.contactH.Delete(rec, req)
	if rec.Code != 204 {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// List is empty again.
	req = httptest.NewRequest("GET", "/api/users/0/contacts", nil)
	req.SetPathValue("id", uid)
	rec = httptest.NewRecorder()
	a.contactH.List(rec, req)
	var contacts []model.EscalationContact
	json.Unmarshal(rec.Body.Bytes(), &contacts)
	if len(contacts) != 0 {
		t.Errorf("contacts after delete = %d, want 0", len(contacts))
	}
}

func TestContactWrongUser(t *testing.T) {
	a := setupAPI(t)
	u1, _ := a.users.Create("+15551230001", "Alice", "Chen", 30)
	u2, _ := a.users.Create("+15551230002", "Priya", "Nair", 30)

	// Contact belongs to u1.
	req := httptest.NewRequest("POST", "/api/users/0/contacts",
		strings.NewReader(`{"first_name":"Bob","phone_number":"+15559990001"}`))
	req.SetPathValue("id", strconv.FormatInt(u1.ID, 10))
	rec := httptest.NewRecorder()
	a.contactH.Create(rec, req)
	var contact model.EscalationContact
	json.Unmarshal(rec.Body.Bytes(), &contact)

	// Deleting through u2's path must 404.
	req = httptest.NewRequest("DELETE", "/api/users/0/contacts/0", nil)
	req.SetPathValue("id", strconv.FormatInt(u2.ID, 10))
	req.SetPathValue("contact_id", strconv.FormatInt(contact.ID, 10))
	rec = httptest.NewRecorder()
	a.contactH.Delete(rec, req)
	if rec.Code != 404 {
		t.Errorf("cross-user delete status = %d, want 404", rec.Code)
	}
}
