// Package credentials fetches the short-lived tokens used to open realtime
// sessions.
package credentials

import "errors"

// ErrNoToken is returned when a credential source answered successfully but
// did not include a usable token.
var ErrNoToken = errors.New("no token returned")
