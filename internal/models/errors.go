package models

import "errors"

// ErrNotFound is returned when a record does not exist or does not belong to
// the requesting user. Repositories translate sql.ErrNoRows into it so
// handlers can map it to a 404 without knowing about database/sql.
var ErrNotFound = errors.New("record not found")
