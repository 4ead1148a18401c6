package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

// success prints a message in green with a checkmark prefix.
func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

// warning prints a message in yellow.
func warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "warning: "+format+"\n", a...)
}

// info prints a label in cyan followed by a plain value.
func info(w io.Writer, label string, format string, a ...any) {
	cyan.Fprintf(w, "%s: ", label)
	fmt.Fprintf(w, format+"\n", a...)
}

// failure prints title in red and the explanation below it, and returns
// a plain error for cobra.
func failure(w io.Writer, title string, err error) error {
	red.Fprintf(w, "%s\n", title)
	if err == nil {
		return fmt.Errorf("%s", title)
	}
	fmt.Fprintf(w, "  %v\n", err)
	return fmt.Errorf("%s: %w", title, err)
}
