package sentinel

import "errors"

// ErrNotFound is returned (optionally wrapped) by stores for absent records.
// The pocket service translates it into a domain error exactly once.
var ErrNotFound = errors.New("not found")
