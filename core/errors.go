package core

import "fmt"

// ErrorCode enumerates the error domain from spec §6/§7: one variant per
// failure the preset parser, preprocessor, reflection engine or pass
// builder can raise at load time.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrPreprocess
	ErrParse
	ErrLink
	ErrMissingVersion
	ErrMultipleFormatPragma
	ErrMultipleNamePragma
	ErrDuplicateParameterPragma
	ErrInvalidParameterPragma
	ErrInvalidFormatPragma
	ErrIncludeNotFound
	ErrImageCaptureFailed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrPreprocess:
		return "PreprocessError"
	case ErrParse:
		return "ParseError"
	case ErrLink:
		return "LinkError"
	case ErrMissingVersion:
		return "MissingVersion"
	case ErrMultipleFormatPragma:
		return "MultipleFormatPragma"
	case ErrMultipleNamePragma:
		return "MultipleNamePragma"
	case ErrDuplicateParameterPragma:
		return "DuplicateParameterPragma"
	case ErrInvalidParameterPragma:
		return "InvalidParameterPragma"
	case ErrInvalidFormatPragma:
		return "InvalidFormatPragma"
	case ErrIncludeNotFound:
		return "IncludeNotFound"
	case ErrImageCaptureFailed:
		return "ImageCaptureFailed"
	default:
		return "Unknown"
	}
}

// ChainError is the single error type returned by every fatal-to-the-load
// code path (spec §7). It always carries the pass index (-1 if the error
// isn't pass-specific) and the offending file path, so a caller can surface
// a human-readable location alongside the message.
type ChainError struct {
	Code    ErrorCode
	Pass    int
	Path    string
	Message string
}

func (e *ChainError) Error() string {
	if e.Pass >= 0 {
		return fmt.Sprintf("%s: pass %d (%s): %s", e.Code, e.Pass, e.Path, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a ChainError with no pass association.
func NewError(code ErrorCode, path, format string, args ...interface{}) *ChainError {
	return &ChainError{Code: code, Pass: -1, Path: path, Message: fmt.Sprintf(format, args...)}
}

// NewPassError builds a ChainError tied to a specific pass index.
func NewPassError(code ErrorCode, pass int, path, format string, args ...interface{}) *ChainError {
	return &ChainError{Code: code, Pass: pass, Path: path, Message: fmt.Sprintf(format, args...)}
}
