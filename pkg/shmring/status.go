package shmring

import "github.com/ultraframe/shmring/internal/status"

// Status is the result code returned by every public operation (spec §6).
type Status = status.Status

const (
	StatusOK               = status.OK
	StatusAlreadyExists    = status.AlreadyExists
	StatusCreationFailed   = status.CreationFailed
	StatusNotInitialized   = status.NotInitialized
	StatusWriteFailed      = status.WriteFailed
	StatusReadFailed       = status.ReadFailed
	StatusBufferFull       = status.BufferFull
	StatusBufferEmpty      = status.BufferEmpty
	StatusInvalidSize      = status.InvalidSize
	StatusPermissionDenied = status.PermissionDenied
	StatusTimeout          = status.Timeout
	StatusInternalError    = status.InternalError
	StatusNotSupported     = status.NotSupported
)

// StatusOf extracts the Status carried by err, or StatusInternalError if
// err does not wrap one.
func StatusOf(err error) Status {
	return status.Of(err)
}

// Sentinel errors for errors.Is(err, shmring.ErrBufferFull)-style checks,
// matching on Status alone regardless of the wrapped cause.
var (
	ErrAlreadyExists    = status.ErrAlreadyExists
	ErrCreationFailed   = status.ErrCreationFailed
	ErrNotInitialized   = status.ErrNotInitialized
	ErrWriteFailed      = status.ErrWriteFailed
	ErrReadFailed       = status.ErrReadFailed
	ErrBufferFull       = status.ErrBufferFull
	ErrBufferEmpty      = status.ErrBufferEmpty
	ErrInvalidSize      = status.ErrInvalidSize
	ErrPermissionDenied = status.ErrPermissionDenied
	ErrTimeout          = status.ErrTimeout
	ErrInternalError    = status.ErrInternalError
	ErrNotSupported     = status.ErrNotSupported
)
