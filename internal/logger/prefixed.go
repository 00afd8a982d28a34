package logger

import (
	"fmt"
	"io"
	"os"
)

// PrefixedLogger decorates every line with a caller-supplied prefix, used
// for per-task output so that interleaved parallel task logs stay
// attributable to their task.
type PrefixedLogger struct {
	out    io.Writer
	prefix string
}

func NewPrefixed(prefix string) *PrefixedLogger {
	return &PrefixedLogger{out: os.Stdout, prefix: prefix}
}

func (l *PrefixedLogger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s%s\n", l.prefix, msg)
}
