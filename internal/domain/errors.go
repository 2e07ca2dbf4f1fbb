package domain

import "errors"

// ErrNotFound is returned by stores when an artifact has never been written.
var ErrNotFound = errors.New("not found")
