package feedback

import (
	"fmt"

	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/hw"
)

var alarmScreen = []hw.TextLine{
	{X: 10, Y: 10, Text: "ALARM"},
	{X: 10, Y: 20, Text: "TRIGGERED"},
	{X: 10, Y: 30, Text: "Press"},
	{X: 10, Y: 40, Text: "button A to"},
	{X: 10, Y: 50, Text: "silence"},
}

// ScreenLines lays out the display. A focus limits the screen to one
// quantity plus the mode line.
func ScreenLines(r greenlife.Reading, mode greenlife.Mode, alarm bool, focus greenlife.DisplayFocus) []hw.TextLine {
	if alarm {
		return append([]hw.TextLine(nil), alarmScreen...)
	}
	lines := make([]hw.TextLine, 0, 3)
	if focus.None() || focus.ShowTemperature {
		lines = append(lines, hw.TextLine{X: 3, Y: 10, Text: fmt.Sprintf("Temp: %.1f C", r.Temp)})
	}
	if focus.None() || focus.ShowHumidity {
		lines = append(lines, hw.TextLine{X: 3, Y: 25, Text: fmt.Sprintf("Humid: %.1f %%", r.Humidity)})
	}
	return append(lines, hw.TextLine{X: 3, Y: 40, Text: "Mode: " + mode.String()})
}
