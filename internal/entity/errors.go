package entity

import "errors"

// Domain errors
var (
	// Input errors
	ErrEmptyText     = errors.New("text is empty")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrInvalidURL    = errors.New("invalid url")

	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Export errors
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNothingToExport   = errors.New("conversation has no messages")
)
