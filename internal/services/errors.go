package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrBrandNotFound         = errors.New("brand not found")
	ErrPromotionNotFound     = errors.New("promotion not found")
	ErrPaymentNotFound       = errors.New("payment intent not found")
	ErrEmailTaken            = errors.New("email already in use")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderIDSpaceExhausted = errors.New("no free order number")
)

// ValidationError is a rejected input; the message is safe to show to users.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func invalid(format string, args ...any) error {
	return &ValidationError{Problems: []string{fmt.Sprintf(format, args...)}}
}

// asValidation wraps a domain validation failure.
func asValidation(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Problems: strings.Split(err.Error(), "; ")}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
