package ui

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videolabeler/labeler"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// header with its margin, the status and controls lines, one spare row
	chromeRows = 5
)

// PlayerModel is the bubbletea model behind a Display. It renders the frames
// it is sent and forwards recognized keys to the labeler.
type PlayerModel struct {
	info     labeler.VideoInfo
	keys     chan<- labeler.Key
	renderer *FrameRenderer
	progress progress.Model

	frame    image.Image
	rendered string
	frames   int

	// Layout
	width  int
	height int
}

// NewPlayerModel creates a player for one video. Keys are sent on keys without
// blocking; a full channel drops the key.
func NewPlayerModel(info labeler.VideoInfo, keys chan<- labeler.Key, renderer *FrameRenderer) PlayerModel {
	if renderer == nil {
		renderer = NewFrameRenderer()
	}

	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = defaultWidth / 2

	return PlayerModel{
		info:     info,
		keys:     keys,
		renderer: renderer,
		progress: prog,
		width:    defaultWidth,
		height:   defaultHeight,
	}
}

// KeyFor maps a key press to a labeler key
func KeyFor(msg tea.KeyMsg) labeler.Key {
	switch msg.String() {
	case " ":
		return labeler.KeyMark
	case "q":
		return labeler.KeyQuit
	case "ctrl+c":
		return labeler.KeyAbort
	default:
		return labeler.KeyNone
	}
}

// Init implements tea.Model
func (m PlayerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key := KeyFor(msg); key != labeler.KeyNone {
			select {
			case m.keys <- key:
			default:
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width/2, 10)
		m.rendered = m.render()

	case FrameMsg:
		m.frame = msg.Frame
		m.frames++
		m.rendered = m.render()
	}

	return m, nil
}

func (m PlayerModel) render() string {
	return m.renderer.Render(m.frame, m.width, m.height-chromeRows)
}

// View implements tea.Model
func (m PlayerModel) View() string {
	header := HeaderStyle.Render(fmt.Sprintf("VideoLabeler [%d/%d] %s",
		m.info.Index+1, m.info.Total, filepath.Base(m.info.Path)))

	done := 0.0
	if m.info.Total > 0 {
		done = float64(m.info.Index) / float64(m.info.Total)
	}
	status := fmt.Sprintf("%s  frame %d", m.progress.ViewAs(done), m.frames)

	controls := HelpStyle.Render("[space] mark true and next  [q] next  [ctrl+c] abort without saving")

	sections := []string{
		header,
		status,
		m.rendered,
		controls,
	}

	return strings.Join(sections, "\n")
}

// Frames returns the number of frames the player has received
func (m PlayerModel) Frames() int { return m.frames }
