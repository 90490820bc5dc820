package terminal

import (
	"fmt"
	"io"
	"strings"

	"fxconvert/internal/converter"

	"github.com/fatih/color"
)

// Renderer prints converter views as coloured text.
type Renderer struct {
	out    io.Writer
	title  *color.Color
	errc   *color.Color
	result *color.Color
	muted  *color.Color
}

// NewRenderer writes to out. With plain set no escape sequences are emitted regardless of
// what the terminal supports.
func NewRenderer(out io.Writer, plain bool) *Renderer {
	r := &Renderer{
		out:    out,
		title:  color.New(color.FgCyan, color.Bold),
		errc:   color.New(color.FgRed),
		result: color.New(color.FgGreen, color.Bold),
		muted:  color.New(color.Faint),
	}
	if plain {
		for _, c := range []*color.Color{r.title, r.errc, r.result, r.muted} {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) Render(v converter.View) {
	switch v.Phase {
	case converter.PhaseLoading:
		fmt.Fprintln(r.out, "Loading exchange rates...")
	case converter.PhaseError:
		r.errc.Fprintf(r.out, "Error: %s\n", v.Error)
		r.muted.Fprintf(r.out, "API URL: %s\n", v.APIURL)
		r.muted.Fprintln(r.out, "Type 'retry' to fetch the rates again.")
	case converter.PhaseReady:
		r.title.Fprintln(r.out, "Currency Converter")
		amount := v.Amount
		if amount == "" {
			amount = "(empty)"
		}
		fmt.Fprintf(r.out, "Amount: %s   %s -> %s\n", amount, v.Source, v.Target)
		if v.HasResult() {
			r.result.Fprintln(r.out, v.Result)
			if v.RateLine != "" {
				fmt.Fprintf(r.out, "Rate: %s\n", v.RateLine)
			}
		}
		r.muted.Fprintf(r.out, "Exchange rates updated: %s\n", v.UpdatedAt)
	}
}

// Codes prints the selectable currency codes, wrapped at perLine codes.
func (r *Renderer) Codes(codes []string, perLine int) {
	if perLine <= 0 {
		perLine = len(codes)
	}
	for start := 0; start < len(codes); start += perLine {
		end := min(start+perLine, len(codes))
		fmt.Fprintln(r.out, strings.Join(codes[start:end], " "))
	}
}

func (r *Renderer) Notice(format string, args ...any) {
	r.muted.Fprintf(r.out, format+"\n", args...)
}

func (r *Renderer) Error(err error) {
	r.errc.Fprintf(r.out, "Error: %v\n", err)
}
