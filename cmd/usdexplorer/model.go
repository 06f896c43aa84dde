package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/cratekit/pkg/usd"
)

// treeRow is one flattened entry of the prim tree, precomputed once at
// startup so navigation never re-walks the scene.
type treeRow struct {
	prim    *usd.Prim
	label   string
	depth   int
	variant string // "{set=name}" when the row roots a variant subtree
}

type model struct {
	path  string
	stage *usd.Stage
	warns string

	rows     []treeRow
	cursor   int
	top      int // first visible tree row
	focusRHS bool

	detail viewport.Model
	width  int
	height int
	ready  bool
}

func newModel(path string, st *usd.Stage, warns string) *model {
	m := &model{path: path, stage: st, warns: warns}
	for _, prim := range st.RootPrims() {
		m.flatten(prim, 0, "")
	}
	return m
}

func (m *model) flatten(prim *usd.Prim, depth int, variant string) {
	m.rows = append(m.rows, treeRow{
		prim:    prim,
		label:   prim.Name,
		depth:   depth,
		variant: variant,
	})
	for _, child := range prim.Children {
		m.flatten(child, depth+1, "")
	}
	for _, setName := range prim.VariantSetOrder {
		for variantName, sub := range prim.Variants[setName] {
			m.flatten(sub, depth+1, fmt.Sprintf("{%s=%s}", setName, variantName))
		}
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail = viewport.New(m.detailWidth(), m.height-2)
		m.ready = true
		m.refreshDetail()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.focusRHS = !m.focusRHS
		case "up", "k":
			if m.focusRHS {
				m.detail.ScrollUp(1)
			} else {
				m.moveCursor(-1)
			}
		case "down", "j":
			if m.focusRHS {
				m.detail.ScrollDown(1)
			} else {
				m.moveCursor(1)
			}
		case "pgup":
			m.moveCursor(-m.treeHeight())
		case "pgdown":
			m.moveCursor(m.treeHeight())
		case "home":
			m.moveCursor(-len(m.rows))
		case "end":
			m.moveCursor(len(m.rows))
		}
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+m.treeHeight() {
		m.top = m.cursor - m.treeHeight() + 1
	}
	m.refreshDetail()
}

func (m *model) treeWidth() int   { return m.width * 2 / 5 }
func (m *model) detailWidth() int { return m.width - m.treeWidth() - 1 }
func (m *model) treeHeight() int  { return m.height - 2 }

func (m *model) refreshDetail() {
	if !m.ready || len(m.rows) == 0 {
		return
	}
	m.detail.SetContent(renderPrimDetail(m.rows[m.cursor].prim))
	m.detail.GotoTop()
}

func (m *model) View() string {
	if !m.ready {
		return "loading..."
	}
	if len(m.rows) == 0 {
		return titleStyle.Render(m.path) + "\n(empty stage)\n"
	}

	tree := m.renderTree()
	detail := m.detail.View()

	left := paneStyle(!m.focusRHS).Width(m.treeWidth()).Render(tree)
	right := paneStyle(m.focusRHS).Width(m.detailWidth()).Render(detail)

	title := titleStyle.Render(fmt.Sprintf(" %s — %d prims ", m.path, len(m.rows)))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return title + "\n" + body
}

func (m *model) renderTree() string {
	var b strings.Builder
	end := m.top + m.treeHeight()
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.top; i < end; i++ {
		row := m.rows[i]
		label := row.label
		if row.variant != "" {
			label = row.variant + " " + label
		}
		line := fmt.Sprintf("%s%s (%s)", strings.Repeat("  ", row.depth), label, row.prim.TypeName)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderPrimDetail(prim *usd.Prim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(prim.Path.String()))
	fmt.Fprintf(&b, "type: %s  specifier: %s\n", prim.TypeName, prim.Specifier)

	if prim.Meta.Kind != nil {
		fmt.Fprintf(&b, "kind: %s\n", *prim.Meta.Kind)
	}
	if prim.Meta.Active != nil {
		fmt.Fprintf(&b, "active: %t\n", *prim.Meta.Active)
	}
	if prim.Meta.APISchemas != nil {
		names := make([]string, len(prim.Meta.APISchemas.Names))
		for i, s := range prim.Meta.APISchemas.Names {
			names[i] = s.String()
		}
		fmt.Fprintf(&b, "apiSchemas (%s): %s\n", prim.Meta.APISchemas.Qual, strings.Join(names, ", "))
	}
	if prim.Meta.Inherits != nil {
		fmt.Fprintf(&b, "inherits (%s): %v\n", prim.Meta.Inherits.Qual, prim.Meta.Inherits.Paths)
	}
	if prim.Meta.Doc != "" {
		fmt.Fprintf(&b, "doc: %s\n", prim.Meta.Doc)
	}

	if len(prim.PropertyOrder) > 0 {
		fmt.Fprintf(&b, "\n%s\n", headerStyle.Render("properties"))
		for _, name := range prim.PropertyOrder {
			prop := prim.Properties[name]
			switch {
			case len(prop.Targets) > 0:
				fmt.Fprintf(&b, "  %s %s -> %v\n", prop.TypeName, name, prop.Targets)
			case prop.TimeSamples != nil:
				fmt.Fprintf(&b, "  %s %s (%d samples)\n", prop.TypeName, name, prop.TimeSamples.Len())
			case prop.Default.IsValid():
				fmt.Fprintf(&b, "  %s %s = %v\n", prop.TypeName, name, prop.Default.Interface())
			default:
				fmt.Fprintf(&b, "  %s %s\n", prop.TypeName, name)
			}
		}
	}
	return b.String()
}
