package store

import "testing"

func TestPushSubscribeAndList(t *testing.T) {
	db := setupTestDB(t)
	s := NewPushStore(db)

	sub, err := s.Subscribe("https://push.example/ep1", "p256dh-1", "auth-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if sub == nil || sub.Endpoint != "https://push.example/ep1" {
		t.Fatalf("subscription = %+v", sub)
	}

	subs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("subscriptions = %d, want 1", len(subs))
	}
}

func TestPushResubscribeSameEndpoint(t *testing.T) {
	db := setupTestDB(t)
	s := NewPushStore(db)

	first, err := s.Subscribe("https://push.example/ep1", "p256dh-old", "auth-old")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Unrelated writes in between move the connection's last insert rowid.
	users := NewUserStore(db)
	if _, err := users.Create("+15551230001", "Alice", "Chen", 30); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.Subscribe("https://push.example/ep2", "p256dh-2", "auth-2"); err != nil {
		t.Fatalf("subscribe second endpoint: %v", err)
	}

	// Re-subscribing the first endpoint must hand back that same record
	// with the refreshed keys, not whatever row was inserted last.
	again, err := s.Subscribe("https://push.example/ep1", "p256dh-new", "auth-new")
	if err != nil {
		t.Fatalf("re-subscribe: %v", err)
	}
	if again == nil {
		t.Fatal("re-subscribe returned nil")
	}
	if again.ID != first.ID {
		t.Errorf("id = %d, want %d", again.ID, first.ID)
	}
	if again.Endpoint != "https://push.example/ep1" {
		t.Errorf("endpoint = %q, want the re-subscribed endpoint", again.Endpoint)
	}
	if again.P256dhKey != "p256dh-new" || again.AuthKey != "auth-new" {
		t.Errorf("keys not refreshed: %+v", again)
	}

	subs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Errorf("subscriptions = %d, want 2", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	db := setupTestDB(t)
	s := NewPushStore(db)

	if _, err := s.Subscribe("https://push.example/ep1", "p", "a"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := s.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	subs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(subs))
	}
}
