// Package kstatus defines the error taxonomy shared by all kchain packages and
// its mapping onto the signed status codes returned by the host API.
//
// All errors produced by kchain wrap one of the sentinels below and can be
// checked with errors.Is.
package kstatus

import (
	"errors"
)

// Sentinel errors for common failure cases.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrConfigurationMismatch = errors.New("configuration mismatch")
	ErrUnresolvedSources     = errors.New("unresolved sources")
	ErrCircularDependency    = errors.New("circular dependency")
	ErrOutOfMemory           = errors.New("out of memory")
	ErrInsufficientSpace     = errors.New("insufficient space")
	ErrInvalidState          = errors.New("invalid state")
	ErrNoData                = errors.New("no data")
)

// Status codes follow the negative errno convention of the host API.
const (
	OK              = 0
	CodePermission  = -1  // EPERM
	CodeNotFound    = -2  // ENOENT
	CodeOutOfMemory = -12 // ENOMEM
	CodeFault       = -14 // EFAULT
	CodeBusy        = -16 // EBUSY
	CodeExists      = -17 // EEXIST
	CodeInvalid     = -22 // EINVAL
	CodeNoSpace     = -28 // ENOSPC
	CodeLoop        = -40 // ELOOP
	CodeNoData      = -61 // ENODATA
	CodeNoLink      = -67 // ENOLINK
)

// ordered so that the more specific classification wins when an error wraps
// several sentinels.
var codes = []struct {
	err  error
	code int
}{
	{ErrConfigurationMismatch, CodePermission},
	{ErrCircularDependency, CodeLoop},
	{ErrUnresolvedSources, CodeNoLink},
	{ErrInsufficientSpace, CodeNoSpace},
	{ErrOutOfMemory, CodeOutOfMemory},
	{ErrInvalidState, CodeBusy},
	{ErrAlreadyExists, CodeExists},
	{ErrNotFound, CodeNotFound},
	{ErrNoData, CodeNoData},
	{ErrInvalidArgument, CodeInvalid},
}

// Code maps err to a signed status. nil yields OK, errors outside the
// taxonomy yield CodeFault.
func Code(err error) int {
	if err == nil {
		return OK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeFault
}

// Failed reports whether a status code signals failure.
func Failed(code int) bool {
	return code < 0
}
