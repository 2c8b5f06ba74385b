package domain

// FileType is the coarse document type resolved by classification.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeImage   FileType = "image"
	FileTypeCSV     FileType = "csv"
	FileTypeText    FileType = "text"
	FileTypeUnknown FileType = "unknown"
)

// ExtractionSource identifies which extraction tier produced a result.
type ExtractionSource string

const (
	SourcePrimary ExtractionSource = "primary"
	SourceOCR     ExtractionSource = "ocr"
	SourceVision  ExtractionSource = "vision"
	SourceAI      ExtractionSource = "ai"
)

// ImportStatus is the import lifecycle state machine.
// Transitions are monotonic: pending → parsing → parsed → committed.
// failed is terminal and reachable from any non-terminal state.
type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusParsing   ImportStatus = "parsing"
	ImportStatusParsed    ImportStatus = "parsed"
	ImportStatusCommitted ImportStatus = "committed"
	ImportStatusFailed    ImportStatus = "failed"
)

// CanTransition reports whether moving from s to next is a legal transition.
func (s ImportStatus) CanTransition(next ImportStatus) bool {
	if next == ImportStatusFailed {
		return s != ImportStatusCommitted && s != ImportStatusFailed
	}
	switch s {
	case ImportStatusPending:
		return next == ImportStatusParsing
	case ImportStatusParsing:
		return next == ImportStatusParsed
	case ImportStatusParsed:
		return next == ImportStatusCommitted
	default:
		return false
	}
}

// DocumentStatus is the processing lifecycle of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusProcessed DocumentStatus = "processed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
// Used only when content sniffing is inconclusive.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeImage,
	"jpeg": FileTypeImage,
	"png":  FileTypeImage,
	"gif":  FileTypeImage,
	"tif":  FileTypeImage,
	"tiff": FileTypeImage,
	"webp": FileTypeImage,
	"csv":  FileTypeCSV,
	"txt":  FileTypeText,
	"text": FileTypeText,
}

// MIMEToFileType maps MIME content types to FileType.
var MIMEToFileType = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeImage,
	"image/png":       FileTypeImage,
	"image/gif":       FileTypeImage,
	"image/tiff":      FileTypeImage,
	"image/webp":      FileTypeImage,
	"text/csv":        FileTypeCSV,
	"application/csv": FileTypeCSV,
	"text/plain":      FileTypeText,
}
