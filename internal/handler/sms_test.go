package handler

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/sossh/Work-Alone/internal/command"
	"github.com/sossh/Work-Alone/internal/middleware"
)

type recordedDispatch struct {
	mu     sync.Mutex
	from   string
	body   string
	called int
}

func (r *recordedDispatch) Execute(from, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.from = from
	r.body = body
	r.called++
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postForm(h *SMSHandler, form url.Values, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sig != "" {
		req.Header.Set("X-Twilio-Signature", sig)
	}
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func TestReceiveDispatchesAndAnswersEmptyTwiML(t *testing.T) {
	spy := &recordedDispatch{}
	mapper := command.NewMapper(spy)
	h := NewSMSHandler(mapper, middleware.NewRateLimiter(), "", "", testLogger())

	form := url.Values{"From": {"+15551230001"}, "Body": {"hello there"}}
	rec := postForm(h, form, "")

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != emptyTwiML {
		t.Errorf("body = %q, want empty TwiML", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Errorf("content type = %q", ct)
	}
	if spy.called != 1 || spy.from != "+15551230001" || spy.body != "hello there" {
		t.Errorf("dispatch = %+v", spy)
	}
}

func TestReceiveMissingFrom(t *testing.T) {
	spy := &recordedDispatch{}
	h := NewSMSHandler(command.NewMapper(spy), middleware.NewRateLimiter(), "", "", testLogger())

	rec := postForm(h, url.Values{"Body": {"hi"}}, "")

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if spy.called != 0 {
		t.Error("dispatched despite missing From")
	}
}

// signFor computes the Twilio signature for a form posted to url.
func signFor(authToken, reqURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	payload := reqURL
	for _, k := range keys {
		payload += k + form.Get(k)
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestReceiveSignatureValidation(t *testing.T) {
	spy := &recordedDispatch{}
	h := NewSMSHandler(command.NewMapper(spy), middleware.NewRateLimiter(), "token123", "https://workalone.example.com", testLogger())

	form := url.Values{"From": {"+15551230001"}, "Body": {"begin"}}

	// Wrong signature rejected.
	rec := postForm(h, form, "bogus")
	if rec.Code != 403 {
		t.Errorf("bad signature status = %d, want 403", rec.Code)
	}
	if spy.called != 0 {
		t.Error("dispatched despite bad signature")
	}

	// Correct signature accepted.
	sig := signFor("token123", "https://workalone.example.com/sms", form)
	rec = postForm(h, form, sig)
	if rec.Code != 200 {
		t.Errorf("good signature status = %d, want 200", rec.Code)
	}
	if spy.called != 1 {
		t.Error("valid request not dispatched")
	}
}

func TestReceiveRateLimitsSender(t *testing.T) {
	spy := &recordedDispatch{}
	h := NewSMSHandler(command.NewMapper(spy), middleware.NewRateLimiter(), "", "", testLogger())

	form := url.Values{"From": {"+15551230001"}, "Body": {"hi"}}
	for i := 0; i < senderLimit+5; i++ {
		rec := postForm(h, form, "")
		// Twilio always gets a clean response, even for dropped senders.
		if rec.Code != 200 {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if spy.called != senderLimit {
		t.Errorf("dispatched = %d, want %d", spy.called, senderLimit)
	}
}
