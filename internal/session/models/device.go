package models

import "github.com/mssola/useragent"

// DeviceName derives a human-readable device label ("Chrome on Linux") from a
// raw User-Agent header. Unrecognized agents fall back to "Unknown device".
func DeviceName(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "Unknown device"
	}

	ua := useragent.New(rawUserAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown device"
	}
}
