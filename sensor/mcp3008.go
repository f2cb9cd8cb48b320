package sensor

import (
	"fmt"
	"sync"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// MCP3008 samples an MCP3008 10 bit ADC on SPI0.
// Results are scaled to the 12 bit range the conversions expect.
type MCP3008 struct {
	mu sync.Mutex
	cs uint8
}

// OpenMCP3008 starts SPI0. rpio.Open must already have succeeded.
func OpenMCP3008(chipSelect uint8, speedHz int) (*MCP3008, error) {
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		return nil, fmt.Errorf("spi0 begin: %w", err)
	}
	rpio.SpiSpeed(speedHz)
	rpio.SpiChipSelect(chipSelect)
	return &MCP3008{cs: chipSelect}, nil
}

// Sample implements Sampler.
func (m *MCP3008) Sample(ch Channel) uint16 {
	if int(ch) >= numChannels {
		return 0
	}
	// start bit, single ended + channel, padding
	buf := []byte{0x01, byte(0x08|ch) << 4, 0x00}

	m.mu.Lock()
	rpio.SpiChipSelect(m.cs)
	rpio.SpiExchange(buf)
	m.mu.Unlock()

	v := uint16(buf[1]&0x03)<<8 | uint16(buf[2])
	return v << 2
}

// Close releases SPI0.
func (m *MCP3008) Close() {
	rpio.SpiEnd(rpio.Spi0)
}
