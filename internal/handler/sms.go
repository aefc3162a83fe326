package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sossh/Work-Alone/internal/command"
	"github.com/sossh/Work-Alone/internal/middleware"
	"github.com/sossh/Work-Alone/internal/sms"
)

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// Each sender gets this many webhook deliveries per minute before being
// dropped, which stops auto-responder loops from burning message credit.
const senderLimit = 30

// SMSHandler terminates the Twilio inbound webhook and hands the message
// to the command mapper. Replies go out through the notifier, never in
// the webhook response, so the TwiML body is always empty.
type SMSHandler struct {
	mapper    *command.Mapper
	limiter   *middleware.RateLimiter
	authToken string
	publicURL string
	logger    *slog.Logger
}

func NewSMSHandler(mapper *command.Mapper, limiter *middleware.RateLimiter, authToken, publicURL string, logger *slog.Logger) *SMSHandler {
	return &SMSHandler{
		mapper:    mapper,
		limiter:   limiter,
		authToken: authToken,
		publicURL: publicURL,
		logger:    logger.With("component", "sms_webhook"),
	}
}

// Receive handles POST /sms.
func (h *SMSHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if h.authToken != "" && h.publicURL != "" {
		sig := r.Header.Get("X-Twilio-Signature")
		if !sms.ValidateSignature(h.authToken, h.publicURL+"/sms", r.PostForm, sig) {
			h.logger.Warn("rejected webhook with bad signature", "remote", middleware.RealIP(r))
			http.Error(w, "invalid signature", http.StatusForbidden)
			return
		}
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	if from == "" {
		http.Error(w, "missing From", http.StatusBadRequest)
		return
	}

	if !h.limiter.Allow(from, senderLimit, time.Minute) {
		h.logger.Warn("sender over rate limit", "from", from)
	} else {
		h.mapper.Dispatch(from, body)
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(emptyTwiML))
}
