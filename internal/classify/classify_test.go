package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerd/internal/domain"
)

func TestClassify_MagicBytes(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		mimeHint string
		want     domain.FileType
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), "statement.bin", "", domain.FileTypePDF},
		{"jpeg magic", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "scan", "", domain.FileTypeImage},
		{"png magic", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, "x.dat", "", domain.FileTypeImage},
		{"gif magic", []byte("GIF89a....."), "", "", domain.FileTypeImage},
		{"tiff little endian", []byte{0x49, 0x49, 0x2A, 0x00, 0x01}, "", "", domain.FileTypeImage},
		{"tiff big endian", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x01}, "", "", domain.FileTypeImage},
		{"webp riff", append([]byte("RIFF\x00\x00\x00\x00"), []byte("WEBPVP8 ")...), "", "", domain.FileTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.data, tt.filename, tt.mimeHint))
		})
	}
}

func TestClassify_SignatureBeatsExtension(t *testing.T) {
	// A PDF renamed to .csv must still classify as pdf.
	got := Classify([]byte("%PDF-1.4 rest of file"), "statement.csv", "text/csv")
	assert.Equal(t, domain.FileTypePDF, got)
}

func TestClassify_ExtensionFallback(t *testing.T) {
	assert.Equal(t, domain.FileTypeCSV,
		Classify([]byte("date,amount\n01/01/2025,4.95\n"), "export.csv", ""))
	assert.Equal(t, domain.FileTypeText,
		Classify([]byte("just some words"), "notes.txt", ""))
}

func TestClassify_MIMEHintFallback(t *testing.T) {
	// No magic bytes, no useful extension: the MIME hint decides.
	assert.Equal(t, domain.FileTypeCSV,
		Classify([]byte{0xC3, 0x28}, "upload", "text/csv; charset=utf-8"))
}

func TestClassify_ContentHeuristics(t *testing.T) {
	assert.Equal(t, domain.FileTypeCSV,
		Classify([]byte("a,b,c\n1,2,3\n"), "", ""))
	assert.Equal(t, domain.FileTypeText,
		Classify([]byte("plain prose with no delimiters"), "", ""))
}

func TestClassify_UnknownNeverErrors(t *testing.T) {
	assert.Equal(t, domain.FileTypeUnknown, Classify(nil, "", ""))
	assert.Equal(t, domain.FileTypeUnknown, Classify([]byte{}, "", ""))
	assert.Equal(t, domain.FileTypeUnknown, Classify([]byte{0x00, 0x01, 0x02, 0x03}, "blob", "application/octet-stream"))
}
