package watsonx

// Theme maps semantic roles to ANSI color indices (0-15) so output follows
// the user's terminal palette. A negative index means no color.
type Theme struct {
	User    int // user turns
	Agent   int // agent turn header
	Error   int
	Success int
	Muted   int // status line, metadata
	Accent  int // headings, links
	Code    int // code block gutter
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		User:    4,
		Agent:   6,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
		Code:    3,
	}
}
