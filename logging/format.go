package logging

import (
	"fmt"
	"strings"
	"time"
)

// Formatter renders one fully formatted line per message. All transports of a
// logger share a single formatter.
type Formatter struct {
	// TimestampFormat is the Go time layout for the line timestamp.
	TimestampFormat string

	// Splat enables printf-style interpolation when the message contains
	// format verbs.
	Splat bool
}

// Format renders `[<timestamp> <SEVERITY>] <message>` terminated by a
// newline.
func (f Formatter) Format(now time.Time, severity Severity, msg string, args []any) string {
	return fmt.Sprintf("[%s %s] %s\n", now.Format(f.TimestampFormat), severity.Upper(), f.message(msg, args))
}

func (f Formatter) message(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	if f.Splat && strings.ContainsRune(msg, '%') {
		return fmt.Sprintf(msg, args...)
	}
	// Without interpolation, arguments are appended as space-separated meta.
	var b strings.Builder
	b.WriteString(msg)
	for _, arg := range args {
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%v", arg)
	}
	return b.String()
}
