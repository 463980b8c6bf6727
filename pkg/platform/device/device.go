// Package device turns User-Agent strings into short labels for audit records.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Label returns "Browser on OS" (e.g. "Chrome on macOS", "Safari on iPhone").
// Mobile agents report their platform instead of the OS string.
func Label(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return browser + " on " + platform
		}
	}

	os := ua.OS()
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
