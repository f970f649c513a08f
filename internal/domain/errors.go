package domain

import "errors"

// Persistence gateway sentinels. Usecases translate them into apperror kinds.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrOwnerTaken is returned when a user is linked to a company while
	// already belonging to another one.
	ErrOwnerTaken = errors.New("user already belongs to a company")
)
