// Package console prints the colored status lines operators watch during a
// run and configures the diagnostic logger.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Printer writes bold, colored status lines.
type Printer struct {
	w       io.Writer
	info    *color.Color
	warn    *color.Color
	err     *color.Color
	success *color.Color
}

// NewPrinter returns a Printer writing to w. Colors are dropped when noColor is
// set or when fatih/color detects a non-terminal.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	p := &Printer{
		w:       w,
		info:    color.New(color.Bold, color.FgBlue),
		warn:    color.New(color.Bold, color.FgYellow),
		err:     color.New(color.Bold, color.FgRed),
		success: color.New(color.Bold, color.FgGreen),
	}
	if noColor {
		for _, c := range []*color.Color{p.info, p.warn, p.err, p.success} {
			c.DisableColor()
		}
	}
	return p
}

// Writer returns the underlying writer, used to echo build output.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Info(format string, a ...any)    { p.line(p.info, format, a...) }
func (p *Printer) Warn(format string, a ...any)    { p.line(p.warn, format, a...) }
func (p *Printer) Error(format string, a ...any)   { p.line(p.err, format, a...) }
func (p *Printer) Success(format string, a ...any) { p.line(p.success, format, a...) }

func (p *Printer) line(c *color.Color, format string, a ...any) {
	_, _ = c.Fprintln(p.w, fmt.Sprintf(format, a...))
}

// SetupLogging configures the standard logrus logger used for diagnostics.
func SetupLogging(w io.Writer, debug, noColor bool) {
	if w == nil {
		w = os.Stderr
	}
	logrus.SetOutput(w)
	logrus.SetLevel(logrus.InfoLevel)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:    noColor,
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
}
