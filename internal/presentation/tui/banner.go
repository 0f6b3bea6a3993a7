package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Botcraft banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	// Gradient from indigo to rose
	lines := []struct{ text, color string }{
		{" ___      _                 __ _   ", "#818cf8"},
		{"| _ ) ___| |_ __ _ _ __ _ / _| |_ ", "#a78bfa"},
		{"| _ \\/ _ \\  _/ _| '_/ _` |  _|  _|", "#c084fc"},
		{"|___/\\___/\\__\\__|_| \\__,_|_|  \\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
