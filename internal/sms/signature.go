package sms

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
	"sort"
)

// ValidateSignature checks Twilio's X-Twilio-Signature header: the form
// parameters are appended to the public URL in sorted key order, HMAC-SHA1
// signed with the auth token, and base64 encoded.
func ValidateSignature(authToken, publicURL string, form url.Values, signature string) bool {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := publicURL
	for _, k := range keys {
		payload += k + form.Get(k)
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(payload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
