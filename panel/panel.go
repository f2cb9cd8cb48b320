// Package panel is a terminal front panel for the simulated board: it shows
// what the node drives and stands in for the buttons and joystick.
package panel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/hw"
	"gitlab.com/lologarithm/greenlife/sensor"
)

const (
	refreshInterval = 100 * time.Millisecond
	// joystick raw step per key press, about 1.5C or 2.5% humidity
	joystickStep = 100
)

// Buttons are the board's two push buttons.
type Buttons interface {
	PressMode(now time.Time) control.Press
	PressFocus(now time.Time) control.Press
}

// StatusSource reports the last poll result.
type StatusSource interface {
	Last() (greenlife.Status, bool)
}

type tickMsg time.Time

// Model is the BubbleTea model for the front panel.
type Model struct {
	board   *hw.Recorder
	adc     *sensor.SimADC
	buttons Buttons
	node    StatusSource
	now     func() time.Time

	out    hw.Outputs
	status greenlife.Status
	last   string
	width  int
}

// New builds the panel.
func New(board *hw.Recorder, adc *sensor.SimADC, buttons Buttons, node StatusSource) Model {
	return Model{
		board:   board,
		adc:     adc,
		buttons: buttons,
		node:    node,
		now:     time.Now,
		out:     board.Outputs(),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "a":
			m.last = "button A: " + m.buttons.PressMode(m.now()).String()
		case "b":
			m.last = "button B: " + m.buttons.PressFocus(m.now()).String()
		case "up", "k":
			m.adc.Nudge(sensor.ChanJoystickTemp, joystickStep)
		case "down", "j":
			m.adc.Nudge(sensor.ChanJoystickTemp, -joystickStep)
		case "right", "l":
			m.adc.Nudge(sensor.ChanHumidity, joystickStep)
		case "left", "h":
			m.adc.Nudge(sensor.ChanHumidity, -joystickStep)
		}
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m *Model) refresh() {
	m.out = m.board.Outputs()
	if st, ok := m.node.Last(); ok {
		m.status = st
	}
}

var (
	colorTitleBg = lipgloss.Color("22")
	colorTitleFg = lipgloss.Color("156")
	colorBorder  = lipgloss.Color("65")
	colorLabel   = lipgloss.Color("252")
	colorDim     = lipgloss.Color("240")
	colorCrit    = lipgloss.Color("196")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitleFg).
			Background(colorTitleBg).
			Padding(0, 1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(colorLabel)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

func (m Model) View() string {
	title := titleStyle.Render("Green Life")
	if m.status.Alarm {
		title += " " + lipgloss.NewStyle().Bold(true).Foreground(colorCrit).Render("ALARM")
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(renderDisplay(m.out.Lines)),
		boxStyle.Render(renderMatrix(m.out.Frame)),
		boxStyle.Render(m.renderOutputs()),
	)

	sections := []string{title, row, m.renderJoystick()}
	if m.last != "" {
		sections = append(sections, dimStyle.Render(m.last))
	}
	sections = append(sections, dimStyle.Render("a: mode   b: focus   arrows: joystick   q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// displayRows is the text box height in lines.
const displayRows = 5

func renderDisplay(lines []hw.TextLine) string {
	sorted := append([]hw.TextLine(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	rows := make([]string, 0, displayRows)
	for _, l := range sorted {
		rows = append(rows, labelStyle.Render(l.Text))
	}
	for len(rows) < displayRows {
		rows = append(rows, "")
	}
	return lipgloss.NewStyle().Width(20).Render(strings.Join(rows, "\n"))
}

// renderMatrix draws the strip with index 0 on the bottom row.
func renderMatrix(f hw.Frame) string {
	const side = 5
	var sb strings.Builder
	for row := side - 1; row >= 0; row-- {
		for col := 0; col < side; col++ {
			sb.WriteString(cell(f[row*side+col]))
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func cell(c hw.Color) string {
	if c == (hw.Color{}) {
		return dimStyle.Render("··")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex(c))).Render("██")
}

func hex(c hw.Color) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// ledHex mixes the three PWM channels into one colour.
func ledHex(rgb [3]uint16) string {
	return colorful.Color{
		R: float64(rgb[hw.Red]) / hw.MaxLevel,
		G: float64(rgb[hw.Green]) / hw.MaxLevel,
		B: float64(rgb[hw.Blue]) / hw.MaxLevel,
	}.Clamped().Hex()
}

func (m Model) renderOutputs() string {
	led := lipgloss.NewStyle().Foreground(lipgloss.Color(ledHex(m.out.RGB))).Render("●")
	tone := "off"
	if m.out.Tone > 0 {
		tone = fmt.Sprintf("%d Hz", m.out.Tone)
	}
	return strings.Join([]string{
		labelStyle.Render("LED    ") + led,
		labelStyle.Render("Buzzer ") + tone,
		labelStyle.Render("Mode   ") + m.status.Mode.Label(),
		labelStyle.Render("Plant  ") + m.status.Category.String(),
	}, "\n")
}

func (m Model) renderJoystick() string {
	temp := m.adc.Sample(sensor.ChanJoystickTemp)
	humid := m.adc.Sample(sensor.ChanHumidity)
	return dimStyle.Render(fmt.Sprintf("joystick  temp %4d (%.1f C)   humid %4d (%.1f %%)",
		temp, sensor.JoystickTemp(temp), humid, sensor.JoystickHumidity(humid)))
}

// Run blocks until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
