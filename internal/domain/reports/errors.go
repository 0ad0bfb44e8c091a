package reports

import "errors"

// ErrNotFound indicates the requested report file does not exist in any
// brand folder.
var ErrNotFound = errors.New("report not found")
