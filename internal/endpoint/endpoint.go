// Package endpoint converts gateway addresses between the connection form
// (ws/wss) used for the persistent duplex stream and the request form
// (http/https) used for one-shot control calls. Host, port, path and query
// are identical across both forms; only the scheme differs. A bare host is
// assumed secure.
package endpoint

import (
	"strings"
)

// ToConnectionForm returns the ws/wss form of an endpoint.
func ToConnectionForm(s string) string {
	switch {
	case strings.HasPrefix(s, "ws://"), strings.HasPrefix(s, "wss://"):
		return s
	case strings.HasPrefix(s, "http://"):
		return "ws://" + strings.TrimPrefix(s, "http://")
	case strings.HasPrefix(s, "https://"):
		return "wss://" + strings.TrimPrefix(s, "https://")
	case hasScheme(s):
		// Unknown scheme: pass through, the failure surfaces at connect time.
		return s
	default:
		return "wss://" + s
	}
}

// ToRequestForm returns the http/https form of an endpoint.
func ToRequestForm(s string) string {
	switch {
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return s
	case strings.HasPrefix(s, "ws://"):
		return "http://" + strings.TrimPrefix(s, "ws://")
	case strings.HasPrefix(s, "wss://"):
		return "https://" + strings.TrimPrefix(s, "wss://")
	case hasScheme(s):
		return s
	default:
		return "https://" + s
	}
}

// hasScheme reports whether s carries an explicit "scheme://" prefix.
// "host:port/path" has a colon but no "//", so it is treated as bare.
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	return i > 0
}
