package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("audit session not found")
	ErrRecordNotFound  = errors.New("audit record not found")
)
