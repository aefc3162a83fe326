// Package sms sends text messages and places voice calls through Twilio,
// and validates inbound webhook signatures.
package sms

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.twilio.com"

// Client talks to the Twilio REST API. SendMessage and MakeCall return the
// provider sid, or "" when the destination was rejected or the request
// failed; callers log and skip that one side effect.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

func NewClient(accountSID, authToken, fromNumber string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if credentials are set.
func (c *Client) Configured() bool {
	return c.accountSID != "" && c.authToken != ""
}

// SendMessage sends an SMS. Returns the message sid, or "" on rejection.
func (c *Client) SendMessage(to, text string) string {
	if !validNumber(to) {
		c.logger.Warn("invalid destination number", "to", to)
		return ""
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", text)

	sid, err := c.post("Messages.json", form)
	if err != nil {
		c.logger.Error("send message", "to", to, "error", err)
		return ""
	}
	return sid
}

// MakeCall places a voice call that speaks the given text.
func (c *Client) MakeCall(to, say string) string {
	if !validNumber(to) {
		c.logger.Warn("invalid destination number for call", "to", to)
		return ""
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Twiml", fmt.Sprintf("<Response><Say>%s</Say></Response>", escapeXML(say)))

	sid, err := c.post("Calls.json", form)
	if err != nil {
		c.logger.Error("make call", "to", to, "error", err)
		return ""
	}
	return sid
}

func (c *Client) post(resource string, form url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/%s", c.baseURL, c.accountSID, resource)
	req, err := http.NewRequest("POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("twilio API error: status %d", resp.StatusCode)
	}

	var body struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.SID, nil
}

// validNumber accepts E.164 North American numbers: +1 and ten digits.
func validNumber(to string) bool {
	if !strings.HasPrefix(to, "+1") || len(to) != 12 {
		return false
	}
	for _, r := range to[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}
