package monitor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sossh/Work-Alone/internal/model"
)

const responderPhone = "+15559990002"

// alertUser creates a user, registers the responder as their contact, and
// leaves them with an alerted session.
func alertUser(t *testing.T, fx *fixture, phone, first string) *model.User {
	t.Helper()
	u, err := fx.users.Create(phone, first, "Nguyen", 30)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := fx.contacts.Create(u.ID, "Dana", "Ortiz", responderPhone); err != nil {
		t.Fatalf("create contact: %v", err)
	}
	sess, err := fx.sessions.Start(u.ID, fx.clock().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if err := fx.sessions.Timeout(sess.ID, fx.clock()); err != nil {
		t.Fatalf("timeout session: %v", err)
	}
	return u
}

func TestMarkSafeNothingOutstanding(t *testing.T) {
	fx := setup(t)
	u := fx.createUser(t, userPhone, 30)
	if _, err := fx.contacts.Create(u.ID, "Dana", "Ortiz", responderPhone); err != nil {
		t.Fatalf("create contact: %v", err)
	}

	fx.svc.MarkSafe(responderPhone, "safe")

	msgs := fx.notifier.sentTo(responderPhone)
	if len(msgs) != 1 || msgs[0].text != msgAllAccounted {
		t.Fatalf("want all-accounted reply, got %+v", msgs)
	}
}

func TestMarkSafeSingleAlert(t *testing.T) {
	fx := setup(t)
	u := alertUser(t, fx, userPhone, "Alice")

	fx.svc.MarkSafe(responderPhone, "safe")

	sess, _ := fx.sessions.MostRecent(u.ID)
	if sess.Status != model.SessionInactive {
		t.Errorf("session status = %q, want inactive", sess.Status)
	}
	if sess.CheckedInByContactID == nil {
		t.Error("resolving contact not recorded on session")
	}

	msgs := fx.notifier.sentTo(responderPhone)
	if len(msgs) != 1 || msgs[0].text != msgMarkedSafe {
		t.Fatalf("want marked-safe confirmation, got %+v", msgs)
	}
}

func TestMarkSafeAmbiguousNeedsID(t *testing.T) {
	fx := setup(t)
	u1 := alertUser(t, fx, "+15551230001", "Alice")
	u2 := alertUser(t, fx, "+15551230002", "Priya")

	// A bare reply cannot pick between two outstanding users.
	fx.svc.MarkSafe(responderPhone, "safe")

	msgs := fx.notifier.sentTo(responderPhone)
	listing := msgs[len(msgs)-1].text
	if !strings.Contains(listing, fmt.Sprintf("Alice Nguyen -> %d", u1.ID)) ||
		!strings.Contains(listing, fmt.Sprintf("Priya Nguyen -> %d", u2.ID)) {
		t.Fatalf("listing missing outstanding users: %q", listing)
	}
	if !strings.Contains(listing, "SAFE <user id>") {
		t.Errorf("listing missing instructions: %q", listing)
	}

	// Neither session was touched.
	for _, u := range []*model.User{u1, u2} {
		sess, _ := fx.sessions.MostRecent(u.ID)
		if sess.Status != model.SessionAlert {
			t.Errorf("user %d session status = %q, want alert", u.ID, sess.Status)
		}
	}

	// Naming an id resolves exactly that user.
	fx.svc.MarkSafe(responderPhone, fmt.Sprintf("safe %d", u2.ID))

	s2, _ := fx.sessions.MostRecent(u2.ID)
	if s2.Status != model.SessionInactive {
		t.Errorf("named user session status = %q, want inactive", s2.Status)
	}
	s1, _ := fx.sessions.MostRecent(u1.ID)
	if s1.Status != model.SessionAlert {
		t.Errorf("other user session status = %q, want still alert", s1.Status)
	}

	// One left outstanding: a bare reply is unambiguous again.
	fx.svc.MarkSafe(responderPhone, "ok")
	s1, _ = fx.sessions.MostRecent(u1.ID)
	if s1.Status != model.SessionInactive {
		t.Errorf("remaining user session status = %q, want inactive", s1.Status)
	}
}

func TestMarkSafeUnknownIDRepeatsListing(t *testing.T) {
	fx := setup(t)
	alertUser(t, fx, "+15551230001", "Alice")
	alertUser(t, fx, "+15551230002", "Priya")

	fx.svc.MarkSafe(responderPhone, "safe 999999")

	msgs := fx.notifier.sentTo(responderPhone)
	if len(msgs) != 1 || !strings.Contains(msgs[0].text, "multiple users") {
		t.Fatalf("want listing for unknown id, got %+v", msgs)
	}
}

func TestMarkSafeLogsContactTraffic(t *testing.T) {
	fx := setup(t)
	u := alertUser(t, fx, userPhone, "Alice")

	fx.svc.MarkSafe(responderPhone, "they are okay")

	logs, err := fx.logs.ListForUser(u.ID, 10)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	// Contact rows carry no user_id, so the user's own log stays empty.
	if len(logs) != 0 {
		t.Errorf("user log rows = %d, want contact traffic kept separate", len(logs))
	}
}
