package feedback

import "gitlab.com/lologarithm/greenlife/hw"

type cell uint8

const (
	background cell = iota
	plant
	pot
)

// plantGlyph is the 5x5 plant pot, in strip order.
var plantGlyph = [hw.MatrixSize]cell{
	pot, pot, pot, pot, pot,
	background, background, plant, background, background,
	background, background, plant, plant, background,
	plant, plant, plant, plant, background,
	plant, plant, plant, background, background,
}

// Raw temperature bands that recolour the plant. These are not the comfort band.
const (
	ColdBand = 10.0
	HotBand  = 50.0
)

// Matrix colours.
var (
	PotColor   = hw.Color{G: 255, B: 255}
	PlantGreen = hw.Color{G: 255}
	PlantCold  = hw.Color{B: 255}
	PlantHot   = hw.Color{R: 255}
)

// PlantColor picks the plant colour from the raw temperature.
func PlantColor(temp float64) hw.Color {
	switch {
	case temp > HotBand:
		return PlantHot
	case temp < ColdBand:
		return PlantCold
	}
	return PlantGreen
}

// MatrixFrame renders the plant glyph for a temperature.
func MatrixFrame(temp float64) hw.Frame {
	var f hw.Frame
	leaf := PlantColor(temp)
	for i, c := range plantGlyph {
		switch c {
		case plant:
			f[i] = leaf
		case pot:
			f[i] = PotColor
		}
	}
	return f
}
