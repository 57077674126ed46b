// Package printer writes human readable command output.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colonyops/zenflow/internal/core/styles"
)

type ctxKey struct{}

// Printer writes styled lines to a writer. Styling is dropped when the
// writer is not a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// New creates a Printer for w. Color is enabled only when w is a terminal.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: isTerminal(w)}
}

// NewPlain creates a Printer that never styles output.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or a stdout Printer.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stdout)
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Color reports whether output is styled.
func (p *Printer) Color() bool { return p.color }

// Render applies style to s when color is enabled.
func (p *Printer) Render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Printf writes a plain line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Section writes a header line.
func (p *Printer) Section(title string) {
	p.line(p.Render(styles.HeaderStyle, title))
}

// Successf writes a line prefixed with a check mark.
func (p *Printer) Successf(format string, args ...any) {
	p.prefixed(styles.SuccessStyle, "✓", format, args...)
}

// Infof writes a muted informational line.
func (p *Printer) Infof(format string, args ...any) {
	p.prefixed(styles.MutedStyle, "•", format, args...)
}

// Warnf writes a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.prefixed(styles.WarningStyle, "!", format, args...)
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.prefixed(styles.ErrorStyle, "✗", format, args...)
}

func (p *Printer) prefixed(style lipgloss.Style, mark, format string, args ...any) {
	p.line(p.Render(style, mark) + " " + fmt.Sprintf(format, args...))
}

func (p *Printer) line(s string) {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = io.WriteString(p.w, s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
