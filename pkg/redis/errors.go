package redis

import "errors"

var (
	ErrNoURL         = errors.New("redis: no connection url")
	ErrBadURL        = errors.New("redis: invalid connection url")
	ErrUnreachable   = errors.New("redis: server unreachable")
	ErrNotResponding = errors.New("redis: ping failed")
)
