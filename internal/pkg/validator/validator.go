package validator

import (
	"github.com/futig/rafiq-frontend/internal/config"
)

// Validator checks user input before anything is sent to the backend
type Validator struct {
	cfg config.FileUploadConfig
}

func New(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// MaxFileSize is the largest accepted document, in bytes
func (v *Validator) MaxFileSize() int64 {
	return v.cfg.MaxFileSize
}
