package provisioning

import (
	"strings"

	"github.com/google/uuid"
)

// Slugify lowercases the input and collapses every non-alphanumeric byte to a
// hyphen. Used to derive tenant slugs from the local part of an email.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// emailLocalPart returns everything before the first '@'.
func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// disambiguateSlug appends a short suffix derived from the owner's id so a
// colliding slug can be retried once.
func disambiguateSlug(slug string, ownerID uuid.UUID) string {
	return slug + "-" + ownerID.String()[:8]
}
