package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pseudomuto/swellow/pkg/consts"
	"github.com/pseudomuto/swellow/pkg/executor"
)

type (
	// Printer writes human readable command output.
	Printer struct {
		w      io.Writer
		styled bool
		theme  theme
	}

	theme struct {
		header  lipgloss.Style
		version lipgloss.Style
		object  lipgloss.Style
		op      lipgloss.Style
		warning lipgloss.Style
	}
)

// NewPrinter returns a Printer writing to w. Output is styled only when w is
// a terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)

	return &Printer{
		w:      w,
		styled: isTerminal(w) && os.Getenv(consts.EnvNoColor) == "",
		theme: theme{
			header:  r.NewStyle().Bold(true),
			version: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			object:  r.NewStyle().Foreground(lipgloss.Color("14")),
			op:      r.NewStyle().Foreground(lipgloss.Color("8")),
			warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}

	return s.Render(text)
}

// Plan prints every version in the plan with the resources it changes, and
// warns about versions that drop objects.
func (p *Printer) Plan(plan *executor.Plan) error {
	var b strings.Builder
	noun := plan.Direction.Noun()

	b.WriteString("Generating migration plan...\n")
	b.WriteString(p.paint(p.theme.header, "--- Migration plan ---") + "\n")

	for id, mig := range plan.Migrations.All() {
		resources := mig.Resources()

		b.WriteString("\n---\n")
		b.WriteString(p.paint(p.theme.version, fmt.Sprintf("%s %d", noun, id)))
		fmt.Fprintf(&b, ": '%s' -> %d change(s)\n", mig.Path, resources.Len())

		for _, res := range resources.Resources() {
			b.WriteString("-> " + p.paint(p.theme.object, fmt.Sprintf("%s %s", res.ObjectType, res.DisplayName())) + ":\n")
			for _, op := range res.Operations {
				b.WriteString("\t-> " + p.paint(p.theme.op, op) + "\n")
			}
		}

		if resources.HasDestructive() {
			b.WriteString("\n\t" + p.paint(p.theme.warning, fmt.Sprintf("WARNING: %s %d contains destructive actions!", noun, id)) + "\n")
		}
	}

	b.WriteString(p.paint(p.theme.header, "--- End of migration plan ---") + "\n")

	_, err := io.WriteString(p.w, b.String())
	return err
}

// Result prints a one line summary of a finished run.
func (p *Printer) Result(res *executor.Result) error {
	mode := ""
	if res.DryRun {
		mode = " (dry run)"
	}

	_, err := fmt.Fprintf(
		p.w,
		"%s: %d version(s), %d statement(s) in %s%s\n",
		res.State,
		len(res.Versions),
		res.Statements(),
		res.Duration.Round(time.Millisecond),
		mode,
	)

	return err
}

// Snapshot prints where a snapshot was written.
func (p *Printer) Snapshot(res *executor.SnapshotResult) error {
	_, err := fmt.Fprintf(p.w, "Snapshot version %d written to %s\n", res.Version, res.Path)
	return err
}
