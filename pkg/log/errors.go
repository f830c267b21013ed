package log

import "errors"

// Construction errors. New wraps the underlying cause with one of these so
// callers can tell the failure kinds apart with errors.Is.
var (
	ErrInvalidOptions = errors.New("invalid logger options")
	ErrLogDirectory   = errors.New("cannot create log directory")
	ErrRotation       = errors.New("cannot rotate log files")
	ErrLogFile        = errors.New("cannot open log file")
)
