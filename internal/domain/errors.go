package domain

import "errors"

var (
	ErrMissingInput           = errors.New("missing required input")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidScanType        = errors.New("invalid scan type")
	ErrRequiresTextExtraction = errors.New("office documents must be submitted as extracted text")
	ErrNoReadableDocuments    = errors.New("no readable documents in scan")
	ErrMalformedAnalysis      = errors.New("analysis model returned malformed output")
	ErrUnreadableFile         = errors.New("file could not be read")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrStorageUnavailable     = errors.New("object storage is not configured")
	ErrObjectNotFound         = errors.New("stored object not found")
)
