package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("too many files in one batch")
	ErrNoFiles             = errors.New("batch contains no files")
	ErrMissingFields       = errors.New("raw record has no fields mapping")
	ErrUploadFailed        = errors.New("scan upload to storage failed")
)
