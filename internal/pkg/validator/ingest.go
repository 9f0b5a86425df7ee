package validator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/futig/rafiq-frontend/internal/entity"
)

// IngestRequest turns user input into a backend request.
// Text is sent untouched; blank text is only accepted when a URL is given.
func (v *Validator) IngestRequest(in entity.IngestInput) (*entity.IngestRequest, error) {
	rawURL := strings.TrimSpace(in.URL)
	if rawURL != "" {
		if err := ValidateURL(rawURL); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(in.Text) == "" && rawURL == "" {
		return nil, entity.ErrEmptyText
	}

	source := in.SourceName
	if source == "" {
		source = entity.DefaultSourceName
		if rawURL != "" && strings.TrimSpace(in.Text) == "" {
			source = rawURL
		}
	}

	return &entity.IngestRequest{
		Text:       in.Text,
		SourceName: source,
		URL:        rawURL,
	}, nil
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", entity.ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", entity.ErrInvalidURL)
	}
	return nil
}
