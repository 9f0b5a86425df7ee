package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
)

func newTestValidator() *Validator {
	return New(config.FileUploadConfig{MaxFileSize: 16, MaxUploadSize: 32})
}

func TestIngestRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name       string
		in         entity.IngestInput
		wantErr    error
		wantSource string
		wantURL    string
	}{
		{name: "blank text", in: entity.IngestInput{Text: "  \n\t"}, wantErr: entity.ErrEmptyText},
		{name: "default source", in: entity.IngestInput{Text: "hello"}, wantSource: "user-paste"},
		{name: "custom source", in: entity.IngestInput{Text: "hello", SourceName: "doc.txt"}, wantSource: "doc.txt"},
		{name: "url only", in: entity.IngestInput{URL: " https://example.org/a "}, wantSource: "https://example.org/a", wantURL: "https://example.org/a"},
		{name: "url with text keeps default", in: entity.IngestInput{Text: "x", URL: "https://example.org"}, wantSource: "user-paste", wantURL: "https://example.org"},
		{name: "bad scheme", in: entity.IngestInput{URL: "ftp://example.org"}, wantErr: entity.ErrInvalidURL},
		{name: "relative url", in: entity.IngestInput{Text: "x", URL: "/local"}, wantErr: entity.ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.IngestRequest(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.SourceName != tt.wantSource {
				t.Errorf("source = %q, want %q", got.SourceName, tt.wantSource)
			}
			if got.URL != tt.wantURL {
				t.Errorf("url = %q, want %q", got.URL, tt.wantURL)
			}
			if got.Text != tt.in.Text {
				t.Errorf("text must be sent untouched: %q", got.Text)
			}
		})
	}
}

func TestDocumentText(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		file    string
		content []byte
		want    string
		wantErr error
	}{
		{"txt", "notes.txt", []byte("bonjour"), "bonjour", nil},
		{"md with bom", "README.MD", []byte("\xEF\xBB\xBF# t"), "# t", nil},
		{"pdf", "doc.pdf", []byte("x"), "", entity.ErrInvalidExtension},
		{"too large", "big.txt", []byte(strings.Repeat("a", 17)), "", entity.ErrFileTooLarge},
		{"binary", "bin.txt", []byte{0xff, 0xfe, 0x00}, "", entity.ErrInvalidFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.DocumentText(tt.file, tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.txt":     "passwd.txt",
		`C:\Users\me\my notes.md`:  "my_notes.md",
		"rapport (final) [v2].txt": "rapport_final_v2.txt",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
