package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrImportNotParsed     = errors.New("import has not finished parsing")
	ErrImportFailed        = errors.New("import is in failed state")
	ErrDuplicateDocument   = errors.New("document with identical content already exists")
	ErrEmptyDocument       = errors.New("document is empty")
	ErrInvalidTransition   = errors.New("illegal import status transition")
)
