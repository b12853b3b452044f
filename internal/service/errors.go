package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
}
