package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidProof         = errors.New("invalid proof")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrChallengeExists      = errors.New("challenge already exists")
	ErrStoreOperationFailed = errors.New("store operation failed")

	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrChallengeNotFound = fmt.Errorf("challenge %w", ErrNotFound)
)
