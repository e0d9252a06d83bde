// Package repository contains data access logic separated from HTTP
// handlers.  Every query is scoped to the requesting user id; ownership is
// enforced in SQL, not in handler code.
package repository

import "errors"

// Sentinel errors surfaced by the repositories.  Handlers translate these
// into HTTP status codes; anything else is a storage failure that is
// logged and reported generically.
var (
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
	ErrTodoNotFound      = errors.New("todo not found")
	ErrEntryNotFound     = errors.New("timetable entry not found")
)
