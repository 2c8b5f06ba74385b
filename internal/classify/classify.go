// Package classify resolves an uploaded buffer to a coarse file type.
// Binary signatures are preferred over the filename extension because
// extensions are user-controlled and signatures are not.
package classify

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ledgerd/internal/domain"
)

// Classify never fails: input that cannot be identified resolves to
// domain.FileTypeUnknown.
func Classify(data []byte, filename, mimeHint string) domain.FileType {
	if ft := sniff(data); ft != domain.FileTypeUnknown {
		return ft
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		// CSV/text claimed by extension still has to decode as UTF-8.
		if ft != domain.FileTypeCSV && ft != domain.FileTypeText {
			return ft
		}
		if utf8.Valid(data) {
			return ft
		}
	}

	if mimeHint != "" {
		mime := strings.ToLower(strings.TrimSpace(strings.Split(mimeHint, ";")[0]))
		if ft, ok := domain.MIMEToFileType[mime]; ok {
			return ft
		}
	}

	if looksTextual(data) {
		if looksTabular(data) {
			return domain.FileTypeCSV
		}
		return domain.FileTypeText
	}

	return domain.FileTypeUnknown
}

// sniff identifies a type from magic bytes alone.
func sniff(data []byte) domain.FileType {
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("%PDF")) {
		return domain.FileTypePDF
	}
	if len(data) >= 4 {
		switch {
		case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF: // JPEG
			return domain.FileTypeImage
		case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47: // PNG
			return domain.FileTypeImage
		case bytes.HasPrefix(data, []byte("GIF8")):
			return domain.FileTypeImage
		case data[0] == 0x49 && data[1] == 0x49 && data[2] == 0x2A && data[3] == 0x00: // TIFF LE
			return domain.FileTypeImage
		case data[0] == 0x4D && data[1] == 0x4D && data[2] == 0x00 && data[3] == 0x2A: // TIFF BE
			return domain.FileTypeImage
		}
	}
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return domain.FileTypeImage
	}
	return domain.FileTypeUnknown
}

// ImageMIME returns the sniffed MIME type of an image buffer. Unrecognized
// buffers come back as image/png, the safest default for model APIs.
func ImageMIME(data []byte) string {
	if len(data) >= 4 {
		switch {
		case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
			return "image/jpeg"
		case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
			return "image/png"
		case bytes.HasPrefix(data, []byte("GIF8")):
			return "image/gif"
		}
	}
	if len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return "image/webp"
	}
	return "image/png"
}

// looksTextual reports whether the buffer decodes as UTF-8 without NUL bytes.
func looksTextual(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0x00) >= 0 {
		return false
	}
	return utf8.Valid(data)
}

// looksTabular reports whether decoded text resembles delimited rows.
func looksTabular(data []byte) bool {
	return bytes.IndexByte(data, ',') >= 0 && bytes.IndexByte(data, '\n') >= 0
}
