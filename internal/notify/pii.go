package notify

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
)

const previewLen = 160

// ScrubPII replaces emails with [EMAIL] and phone numbers with [PHONE].
// Names are kept so log lines stay readable.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	return text
}

// HashEmail returns a short stable fingerprint of an address for correlating
// log lines without storing the address itself.
func HashEmail(email string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%x", h[:6])
}

// preview returns the scrubbed start of body on a single line.
func preview(body string) string {
	body = strings.Join(strings.Fields(ScrubPII(body)), " ")
	if r := []rune(body); len(r) > previewLen {
		return string(r[:previewLen]) + "…"
	}
	return body
}
