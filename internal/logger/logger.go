package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTTY is true when stdout appears to be a tty.
var IsTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// IsCI is true when we appear to be running in a non-interactive context.
var IsCI = os.Getenv("CI") == "true" || os.Getenv("BUILD_NUMBER") == "true" || os.Getenv("TEAMCITY_VERSION") != ""

var successPrefix = color.New(color.Bold, color.FgGreen, color.ReverseVideo).Sprint(" SUCCESS ")
var allowFailPrefix = color.New(color.Bold, color.FgYellow, color.ReverseVideo).Sprint(" ALLOW_FAIL ")
var failurePrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" FAILURE ")
var abortPrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo, color.BlinkSlow).Sprint(" ABORT ")
var warningPrefix = color.New(color.Bold, color.FgYellow, color.ReverseVideo).Sprint(" WARNING ")
var errorPrefix = color.New(color.Bold, color.FgRed, color.ReverseVideo).Sprint(" ERROR ")

// Logger is the basic colored logger every command writes through.
type Logger struct {
	Out io.Writer
}

// New returns a Logger writing to stdout.
func New() *Logger {
	return &Logger{Out: os.Stdout}
}

func (l *Logger) Printf(format string, args ...interface{}) {
	fmt.Fprintln(l.Out, fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, successPrefix+color.GreenString(" %v", msg))
}

func (l *Logger) AllowFailf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, allowFailPrefix+color.YellowString(" %v", msg))
}

func (l *Logger) Failuref(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, failurePrefix+color.RedString(" %v", msg))
}

func (l *Logger) Abortf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, abortPrefix+color.RedString(" %v", msg))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, warningPrefix+color.YellowString(" %v", msg))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(l.Out, errorPrefix+color.RedString(" %v", msg))
}
