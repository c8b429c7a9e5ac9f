package errors

import "errors"

var (
	ErrForbidden = errors.New("caller is not allowed to access this booking")

	ErrAnonymousCaller = errors.New("caller identity is required")
)
