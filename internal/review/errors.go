package review

import "errors"

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrEmptyDescription   = errors.New("description must not be empty")
	ErrUnknownTag         = errors.New("unknown tag")
	ErrAuditFinalized     = errors.New("audit already finalized")
	ErrNothingAccepted    = errors.New("no accepted suggestions")
)
