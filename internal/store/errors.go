package store

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrPhoneTaken = errors.New("phone number belongs to another user")
	ErrInvalidKey = errors.New("invalid key")
)
