package study

import "errors"

var (
	ErrCompleted         = errors.New("session is completed")
	ErrClosed            = errors.New("session is closed")
	ErrEmptySession      = errors.New("session has no words")
	ErrWrongStyle        = errors.New("operation not available in this study style")
	ErrRevealed          = errors.New("answer already revealed")
	ErrInputLength       = errors.New("input buffer does not match the answer length")
	ErrInputPosition     = errors.New("input position out of range")
	ErrSelectionOrder    = errors.New("study mode selected out of order")
	ErrInvalidDirection  = errors.New("invalid study direction")
	ErrInvalidStyle      = errors.New("invalid study style")
	ErrInvalidBatchSize  = errors.New("invalid batch size")
	ErrSpeechUnavailable = errors.New("speech is not available")
)
