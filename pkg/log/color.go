package log

// Color is an ANSI escape sequence applied to console output.
type Color string

const (
	ColorHeader  Color = "\033[95m"
	ColorInfo    Color = "\033[94m"
	ColorSuccess Color = "\033[92m"
	ColorWarning Color = "\033[93m"
	ColorError   Color = "\033[91m"
	ColorDebug   Color = "\033[96m"
	ColorReset   Color = "\033[0m"
)

type colorKey struct{}
