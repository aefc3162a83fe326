package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sossh/Work-Alone/internal/store"
)

// Alerter fans an escalation out to every subscribed operator browser.
// Expired subscriptions are pruned as they are discovered.
type Alerter struct {
	svc    *Service
	subs   *store.PushStore
	logger *slog.Logger
}

func NewAlerter(svc *Service, subs *store.PushStore, logger *slog.Logger) *Alerter {
	return &Alerter{
		svc:    svc,
		subs:   subs,
		logger: logger.With("component", "push"),
	}
}

// SessionAlert notifies operators that a user's session escalated.
func (a *Alerter) SessionAlert(userName string, userID int64) {
	subs, err := a.subs.List()
	if err != nil {
		a.logger.Error("list subscriptions", "error", err)
		return
	}

	payload := Payload{
		Title: "Work-Alone alert",
		Body:  fmt.Sprintf("%s has not responded and their contacts were notified.", userName),
		URL:   fmt.Sprintf("/users/%d", userID),
		Tag:   fmt.Sprintf("session-alert-%d", userID),
	}

	for _, sub := range subs {
		sub := sub
		if err := a.svc.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if delErr := a.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
					a.logger.Error("prune expired subscription", "error", delErr)
				}
				continue
			}
			a.logger.Error("send alert", "subscription_id", sub.ID, "error", err)
		}
	}
}
