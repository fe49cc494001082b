package health

import "errors"

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrCheckTimeout = errors.New("health: check timeout")
	ErrBadStatus    = errors.New("health: unexpected status")
)
