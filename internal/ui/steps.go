package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tacc/internal/regalloc"
)

type stepKeys struct {
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding
	Quit  key.Binding
}

func (k stepKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Quit}
}

func (k stepKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultStepKeys = stepKeys{
	Next:  key.NewBinding(key.WithKeys("right", "l", "n", " "), key.WithHelp("→/n", "next")),
	Prev:  key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/p", "prev")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// register colors cycle through the 8 bright ANSI colors
var registerPalette = []lipgloss.Color{"9", "10", "11", "12", "13", "14", "3", "5"}

// StepModel replays the coloring decisions of one allocation. Position 0
// shows the uncolored graph, position i the graph after step i.
type StepModel struct {
	alloc *regalloc.Allocation
	pos   int
	keys  stepKeys
	help  help.Model
	width int
}

// NewStepModel starts the viewer at the uncolored graph.
func NewStepModel(alloc *regalloc.Allocation) *StepModel {
	return &StepModel{
		alloc: alloc,
		keys:  defaultStepKeys,
		help:  help.New(),
		width: 80,
	}
}

// Position reports how many steps are applied.
func (m *StepModel) Position() int { return m.pos }

func (m *StepModel) Init() tea.Cmd { return nil }

func (m *StepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.pos = min(m.pos+1, len(m.alloc.Steps))
		case key.Matches(msg, m.keys.Prev):
			m.pos = max(m.pos-1, 0)
		case key.Matches(msg, m.keys.First):
			m.pos = 0
		case key.Matches(msg, m.keys.Last):
			m.pos = len(m.alloc.Steps)
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.help.Width = msg.Width
		}
	}
	return m, nil
}

func (m *StepModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spill := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	var b strings.Builder
	total := len(m.alloc.Steps)
	var current *regalloc.Step
	colors := map[string]int{}
	if m.pos > 0 {
		current = &m.alloc.Steps[m.pos-1]
		colors = current.Snapshot
	}

	header := fmt.Sprintf("Register allocation: step %d/%d", m.pos, total)
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	if current != nil {
		b.WriteString(current.Description)
	} else {
		b.WriteString(dim.Render("uncolored interference graph"))
	}
	b.WriteString("\n\n")

	graph := m.alloc.Graph
	if graph == nil || len(graph.Nodes) == 0 {
		b.WriteString(dim.Render("(no variables)"))
		b.WriteString("\n")
	} else {
		nameWidth := 0
		for _, n := range graph.Nodes {
			nameWidth = max(nameWidth, runewidth.StringWidth(n))
		}
		for _, node := range graph.Nodes {
			marker := "  "
			if current != nil && current.Node == node {
				marker = "> "
			}
			name := runewidth.FillRight(node, nameWidth)
			var state string
			switch c, ok := colors[node]; {
			case ok && c < len(m.alloc.File):
				style := lipgloss.NewStyle().Foreground(registerPalette[c%len(registerPalette)]).Bold(true)
				state = style.Render(m.alloc.File[c])
			case m.decided(node):
				state = spill.Render("spilled")
			default:
				state = dim.Render("-")
			}
			neighbors := slices.Clone(graph.Neighbors(node))
			slices.Sort(neighbors)
			line := fmt.Sprintf("%s%s  deg %-2d  %s", marker, name, graph.Degrees[node], state)
			if len(neighbors) > 0 {
				line += dim.Render("  -- " + strings.Join(neighbors, ", "))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// decided reports whether node was already visited at the current position.
func (m *StepModel) decided(node string) bool {
	for _, s := range m.alloc.Steps[:m.pos] {
		if s.Node == node {
			return true
		}
	}
	return false
}
