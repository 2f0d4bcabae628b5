package registry

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrForbidden       = errors.New("forbidden")
	ErrDuplicatePath   = errors.New("an endpoint with this path already exists")
	ErrDuplicateMethod = errors.New("a handler for this method already exists on the endpoint")
	ErrDuplicateName   = errors.New("an auth profile with this name already exists")
	ErrPathImmutable   = errors.New("endpoint path cannot be changed after creation")
	ErrMethodImmutable = errors.New("handler http method cannot be changed after creation")
	ErrInvalidMethod   = errors.New("unsupported http method")
	ErrInvalidStatus   = errors.New("response status code must be between 100 and 599")
	ErrInvalidProfile  = errors.New("invalid auth profile configuration")
	ErrProfileNotFound = errors.New("referenced auth profile does not exist")
)
