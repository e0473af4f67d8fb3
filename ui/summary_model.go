package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videolabeler/labels"
)

// RecordItem is a label record shown in the summary list
type RecordItem struct {
	Record labels.Record
	// Similar lists other videos whose first frame looks alike
	Similar []string
}

func (r RecordItem) FilterValue() string { return r.Record.VideoPath }
func (r RecordItem) Title() string       { return filepath.Base(r.Record.VideoPath) }
func (r RecordItem) Description() string {
	status := "✗ unmarked"
	if r.Record.SpaceBar {
		status = "✓ marked"
	}
	if len(r.Similar) > 0 {
		status += fmt.Sprintf(" · looks like %s", strings.Join(r.Similar, ", "))
	}
	return status
}

// SummaryModel browses the records of a labels file
type SummaryModel struct {
	summary labels.Summary
	list    list.Model

	// Layout
	width  int
	height int

	quitting bool
}

// NewSummaryModel creates the browser for set, annotating records that are part of a similar pair
func NewSummaryModel(set labels.Set, pairs []labels.SimilarPair) SummaryModel {
	similar := make(map[string][]string)
	for _, p := range pairs {
		similar[p.A.VideoPath] = append(similar[p.A.VideoPath], filepath.Base(p.B.VideoPath))
		similar[p.B.VideoPath] = append(similar[p.B.VideoPath], filepath.Base(p.A.VideoPath))
	}

	items := make([]list.Item, len(set))
	for i, r := range set {
		items[i] = RecordItem{Record: r, Similar: similar[r.VideoPath]}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Labeled Videos"

	return SummaryModel{
		summary: labels.Summarize(set),
		list:    l,
	}
}

// Init implements tea.Model
func (m SummaryModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m SummaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// let the list handle q while the filter prompt is open
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "ctrl+c", "q":
				m.quitting = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-4)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m SummaryModel) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render(SummaryLine(m.summary))
	return header + "\n" + m.list.View()
}

// SummaryLine renders the counts of a summary on one line
func SummaryLine(s labels.Summary) string {
	return fmt.Sprintf("%d videos · %d marked · %d unmarked", s.Total, s.Marked, s.Unmarked)
}
