// Package feedback turns the node's single authoritative state into targets
// for the RGB LED, the LED matrix, the buzzer and the display.
package feedback

import (
	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/hw"
)

// RGB is one intensity per LED channel, 0..hw.MaxLevel.
type RGB [3]uint16

// LED colours used by the node.
var (
	RGBRed   = RGB{hw.Red: hw.MaxLevel}
	RGBGreen = RGB{hw.Green: hw.MaxLevel}
	RGBAmber = RGB{hw.Red: hw.MaxLevel, hw.Green: hw.MaxLevel}
)

// RGBFor picks the LED colour for a category. Danger is already red before
// the latch trips.
func RGBFor(c greenlife.Category) RGB {
	switch c {
	case greenlife.Happy:
		return RGBGreen
	case greenlife.Cold, greenlife.Hot, greenlife.Thirsty, greenlife.Flooded:
		return RGBAmber
	}
	return RGBRed
}
