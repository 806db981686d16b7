package gows

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Arg pairs a piece of log text with an optional color used to render it.
// A nil Color prints the text uncolored.
type Arg struct {
	Text  string
	Color *color.Color
}

// Colored builds an Arg rendered in c.
func Colored(text string, c *color.Color) Arg {
	return Arg{Text: text, Color: c}
}

// Plain builds an uncolored Arg.
func Plain(text string) Arg {
	return Arg{Text: text}
}

// Logger writes formatted, color-annotated lines to stdout/stderr. Writes
// are line-atomic: a single mutex guards both writers so concurrent workers
// never interleave partial lines.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	err    io.Writer
	silent bool
}

// NewLogger builds a Logger writing to os.Stdout/os.Stderr. When silent is
// true, every call is a no-op — this is how --silent disables logging
// without threading a nil-check through every call site.
func NewLogger(silent bool) *Logger {
	return &Logger{out: os.Stdout, err: os.Stderr, silent: silent}
}

// Info logs format with args to stdout.
func (l *Logger) Info(format string, args ...Arg) {
	l.log(l.out, format, args)
}

// Error logs format with args to stderr.
func (l *Logger) Error(format string, args ...Arg) {
	l.log(l.err, format, args)
}

// log substitutes each "{}" placeholder in format with the next Arg in
// args, in order, coloring the substituted text when the Arg carries a
// color. Unmatched "{{" / "}}" are treated as escaped literal braces,
// mirroring the original logger's template grammar.
func (l *Logger) log(w io.Writer, format string, args []Arg) {
	if l.silent {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var b strings.Builder
	argIdx := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '}' {
				if argIdx < len(args) {
					arg := args[argIdx]
					argIdx++
					if arg.Text != "" {
						if arg.Color != nil {
							b.WriteString(arg.Color.Sprint(arg.Text))
						} else {
							b.WriteString(arg.Text)
						}
					}
				}
				i++
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			b.WriteRune(c)
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	fmt.Fprintln(w, b.String())
}
