package provisioning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"Alice", "alice"},
		{"jane.doe", "jane-doe"},
		{"jane_doe+test", "jane-doe-test"},
		{"user123", "user123"},
		{"héllo", "h-llo"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "jane.doe", emailLocalPart("jane.doe@example.com"))
	assert.Equal(t, "nodomain", emailLocalPart("nodomain"))
	assert.Equal(t, "", emailLocalPart("@example.com"))
}

func TestDisambiguateSlug(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "alice-org-6ba7b810", disambiguateSlug("alice-org", id))
}
