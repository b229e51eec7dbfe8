package format

import (
	"strings"

	"github.com/mssola/useragent"
)

// UserAgent turns a raw User-Agent header into "Browser on Platform".
func UserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	return browser + " on " + platformName(ua)
}

func platformName(ua *useragent.UserAgent) string {
	platform := ua.Platform()
	if platform == "iPhone" || platform == "iPad" {
		return platform
	}

	os := ua.OS()
	switch {
	case strings.Contains(os, "Android"):
		return "Android"
	case strings.Contains(os, "Mac OS X"):
		return "macOS"
	case strings.Contains(os, "Windows"):
		return "Windows"
	case strings.Contains(os, "Linux"):
		return "Linux"
	case os != "":
		return os
	case platform != "":
		return platform
	default:
		return "Unknown OS"
	}
}
