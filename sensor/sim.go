package sensor

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"
)

// numChannels is the channel count of an MCP3008 and of the simulator.
const numChannels = 8

// Raw sample giving roughly 25C on the internal sensor.
const internalRoomRaw = 881

// SimADC is a settable in-memory ADC used when no hardware is present.
type SimADC struct {
	raw [numChannels]atomic.Uint32
}

// NewSimADC starts with the joystick centred and the internal sensor at room temperature.
func NewSimADC() *SimADC {
	s := &SimADC{}
	s.Set(ChanHumidity, MaxRaw/2+1)
	s.Set(ChanJoystickTemp, MaxRaw/2+1)
	s.Set(ChanInternalTemp, internalRoomRaw)
	return s
}

// Sample implements Sampler.
func (s *SimADC) Sample(ch Channel) uint16 {
	if int(ch) >= numChannels {
		return 0
	}
	return uint16(s.raw[ch].Load())
}

// Set stores a raw value, clamped to 0..MaxRaw.
func (s *SimADC) Set(ch Channel, raw int) {
	if int(ch) >= numChannels {
		return
	}
	s.raw[ch].Store(uint32(clamp(raw)))
}

// Nudge moves a channel by delta and returns the new raw value.
func (s *SimADC) Nudge(ch Channel, delta int) uint16 {
	if int(ch) >= numChannels {
		return 0
	}
	for {
		old := s.raw[ch].Load()
		nv := uint32(clamp(int(old) + delta))
		if s.raw[ch].CompareAndSwap(old, nv) {
			return uint16(nv)
		}
	}
}

// Wander random-walks the joystick channels until ctx is done.
func (s *SimADC) Wander(ctx context.Context, interval time.Duration, step int, rnd *rand.Rand) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Nudge(ChanJoystickTemp, rnd.Intn(2*step+1)-step)
			s.Nudge(ChanHumidity, rnd.Intn(2*step+1)-step)
		}
	}
}

func clamp(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > MaxRaw {
		return MaxRaw
	}
	return raw
}
