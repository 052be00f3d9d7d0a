package services

import "errors"

// ErrStoreUnavailable marks a transient relational-store failure. Absence of
// a row is never an error - lookups return (nil, nil) for that.
var ErrStoreUnavailable = errors.New("store unavailable")
