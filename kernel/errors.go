package kernel

import "errors"

// Sentinel errors for kernel invocation.
var (
	ErrNotFound      = errors.New("kernel function not found")
	ErrAlreadyExists = errors.New("kernel function already registered")
	ErrEmptyName     = errors.New("kernel function name is empty")
	ErrUnavailable   = errors.New("kernel is not available")
)
