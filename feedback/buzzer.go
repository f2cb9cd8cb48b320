package feedback

import "time"

// Alarm tones and how long each one sounds.
const (
	ToneLow  = 1000
	ToneHigh = 1500
	ToneStep = 300 * time.Millisecond
)

// Buzzer is the alarm tone sequencer. It does not block: the caller steps it
// with the current time and gets the tone that should be sounding.
type Buzzer struct {
	tones [2]int
	step  time.Duration
	on    bool
	idx   int
	next  time.Time
}

// NewBuzzer alternates ToneLow and ToneHigh every step.
func NewBuzzer(step time.Duration) *Buzzer {
	if step <= 0 {
		step = ToneStep
	}
	return &Buzzer{tones: [2]int{ToneLow, ToneHigh}, step: step}
}

// Step returns the tone for now. Stepping with the same time twice gives the
// same tone. Inactive resets the sequence and returns 0.
func (b *Buzzer) Step(now time.Time, active bool) int {
	if !active {
		b.on = false
		b.idx = 0
		b.next = time.Time{}
		return 0
	}
	if !b.on {
		b.on = true
		b.idx = 0
		b.next = now.Add(b.step)
		return b.tones[0]
	}
	if !now.Before(b.next) {
		n := now.Sub(b.next)/b.step + 1
		b.idx = (b.idx + int(n%2)) % 2
		b.next = b.next.Add(n * b.step)
	}
	return b.tones[b.idx]
}

// NextSwitch is when the tone changes next; false when silent.
func (b *Buzzer) NextSwitch() (time.Time, bool) {
	return b.next, b.on
}
