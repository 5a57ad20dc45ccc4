package domain

import "errors"

// Error kinds shared by every service. Services wrap these with context via
// fmt.Errorf("%w: ...") and callers check them with errors.Is, so the HTTP
// layer can map each kind to a status code without string matching.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrAlreadyExists      = errors.New("already exists")
)
