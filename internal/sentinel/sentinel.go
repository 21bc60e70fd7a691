package sentinel

import "errors"

// ErrNotFound is returned (optionally wrapped) by the dataset read stores
// when a user or alert id matches no row. The lookup service translates it
// into a domain error exactly once.
var ErrNotFound = errors.New("not found")
