package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// URLError reports why a configured URL was rejected.
type URLError struct {
	Field   string
	Message string
	URL     string
}

func (e URLError) Error() string {
	return fmt.Sprintf("%s: %s (url: %s)", e.Field, e.Message, e.URL)
}

// ValidateURL checks that a URL is absolute and well-formed. Empty
// values pass; required-ness is the caller's concern. With requireHTTPS
// set, http:// URLs are rejected except for localhost.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}

	parsed, err := url.Parse(urlString)
	if err != nil {
		return URLError{Field: fieldName, Message: "invalid URL format", URL: urlString}
	}
	if parsed.Scheme == "" {
		return URLError{Field: fieldName, Message: "URL must include a scheme (http:// or https://)", URL: urlString}
	}
	if parsed.Host == "" {
		return URLError{Field: fieldName, Message: "URL must include a host", URL: urlString}
	}

	if requireHTTPS && strings.ToLower(parsed.Scheme) != "https" {
		host := parsed.Hostname()
		if host != "localhost" && host != "127.0.0.1" {
			return URLError{Field: fieldName, Message: "URL must use HTTPS", URL: urlString}
		}
	}
	return nil
}
