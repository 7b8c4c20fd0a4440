package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Renderer draws results, plans and errors for a terminal.
type Renderer struct {
	styles Styles
}

func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles(DarkPalette)}
}

// Result renders r as a bordered table under a title line. keyCols is
// the number of leading key columns, highlighted in the body.
func (rd *Renderer) Result(r *QueryResult, keyCols int) string {
	s := rd.styles

	title := s.Title.Render(r.Name)
	if r.RunID != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, s.Badge.Render("run "+r.RunID))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers(r.Columns...).
		Rows(r.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == 0:
				return s.Header
			case col < keyCols:
				return s.Key
			default:
				return s.Cell
			}
		})

	footer := s.Footer.Render(fmt.Sprintf("%s in %v, digest %016x", r.Message(), r.Duration, r.Digest))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render(), footer)
}

// Plan renders an operator tree as produced by execution.Explain.
func (rd *Renderer) Plan(name, tree string) string {
	s := rd.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(name),
		s.Tree.Render(strings.TrimRight(tree, "\n")))
}

func (rd *Renderer) Error(err error) string {
	return rd.styles.Error.Render("ERROR") + " " + err.Error()
}
