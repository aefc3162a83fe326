package sms

import (
	"log/slog"

	"github.com/google/uuid"
)

// Console is a stand-in notifier for local development: it logs instead of
// dialing out and hands back generated sids so callers behave exactly as
// they would against the real provider.
type Console struct {
	logger *slog.Logger
}

func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

func (c *Console) SendMessage(to, text string) string {
	if !validNumber(to) {
		c.logger.Warn("invalid destination number", "to", to)
		return ""
	}
	sid := "SM" + uuid.NewString()
	c.logger.Info("sms (console)", "to", to, "sid", sid, "body", text)
	return sid
}

func (c *Console) MakeCall(to, say string) string {
	if !validNumber(to) {
		c.logger.Warn("invalid destination number for call", "to", to)
		return ""
	}
	sid := "CA" + uuid.NewString()
	c.logger.Info("call (console)", "to", to, "sid", sid, "say", say)
	return sid
}
