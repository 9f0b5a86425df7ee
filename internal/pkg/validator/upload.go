package validator

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/futig/rafiq-frontend/internal/entity"
)

var AllowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// IsSupportedFile reports whether a file name has an ingestible extension
func IsSupportedFile(name string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// ValidateFile checks the name and size of an uploaded document
func (v *Validator) ValidateFile(name string, size int64) error {
	if name == "" {
		return fmt.Errorf("%w: missing file name", entity.ErrInvalidFile)
	}

	if !IsSupportedFile(name) {
		ext := strings.ToLower(filepath.Ext(name))
		return fmt.Errorf("%w: %q (allowed: txt, md)", entity.ErrInvalidExtension, ext)
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, name, size, v.cfg.MaxFileSize)
	}

	return nil
}

// DocumentText validates a text document and returns its content
func (v *Validator) DocumentText(name string, content []byte) (string, error) {
	if err := v.ValidateFile(name, int64(len(content))); err != nil {
		return "", err
	}

	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: '%s' is not UTF-8 text", entity.ErrInvalidFile, name)
	}

	return strings.TrimPrefix(string(content), "\uFEFF"), nil
}

// ReadUpload reads a multipart file into text; the sanitised file name is returned with it.
func (v *Validator) ReadUpload(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	if header == nil {
		return "", "", fmt.Errorf("%w: missing file", entity.ErrInvalidFile)
	}

	name := SanitizeFilename(header.Filename)
	if err := v.ValidateFile(name, header.Size); err != nil {
		return "", "", err
	}

	content, err := io.ReadAll(io.LimitReader(file, v.cfg.MaxFileSize+1))
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}

	text, err := v.DocumentText(name, content)
	if err != nil {
		return "", "", err
	}
	return name, text, nil
}

// SanitizeFilename keeps the base name and drops characters awkward in labels
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
