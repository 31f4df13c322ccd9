package composio

import "errors"

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("composio api key not configured")
