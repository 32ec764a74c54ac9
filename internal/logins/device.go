package logins

import (
	"net/http"
	"strings"

	dbtypes "github.com/zulal-hq/identity-backend/pkg/db/types"
)

var mobileMarkers = []string{"Mobile", "Android", "iPhone", "iPad"}

// DeviceInfo is the coarse device fingerprint stored with a login event.
type DeviceInfo struct {
	UserAgent string
	IsMobile  bool
	Browser   string
}

// ToMap renders the fingerprint in the persisted jsonb shape.
func (d DeviceInfo) ToMap() dbtypes.JSONMap {
	return dbtypes.JSONMap{
		"userAgent": d.UserAgent,
		"isMobile":  d.IsMobile,
		"browser":   d.Browser,
	}
}

// ParseDeviceInfo classifies a user agent. Browser detection is first-match:
// Chrome, then Firefox, then Safari.
func ParseDeviceInfo(userAgent string) DeviceInfo {
	info := DeviceInfo{UserAgent: userAgent, Browser: "Unknown"}
	for _, marker := range mobileMarkers {
		if strings.Contains(userAgent, marker) {
			info.IsMobile = true
			break
		}
	}
	switch {
	case strings.Contains(userAgent, "Chrome"):
		info.Browser = "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		info.Browser = "Firefox"
	case strings.Contains(userAgent, "Safari"):
		info.Browser = "Safari"
	}
	return info
}

// ExtractClientIP resolves the client address from proxy headers:
// first hop of X-Forwarded-For, then X-Real-Ip, then CF-Connecting-Ip.
// Returns nil when no header carries an address.
func ExtractClientIP(r *http.Request) *string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hop := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if hop != "" {
			return &hop
		}
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return &real
	}
	if cf := r.Header.Get("CF-Connecting-Ip"); cf != "" {
		return &cf
	}
	return nil
}
