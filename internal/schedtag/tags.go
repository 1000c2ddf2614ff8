// Package schedtag centralizes the scheduler.Tag constants every
// subsystem schedules against. scheduler.Tag is a bare int so that the
// scheduler package stays ignorant of its callers; collecting every tag
// in one place is what keeps two subsystems from ever picking the same
// numeric tag by accident.
package schedtag

import "GoBA/internal/scheduler"

const (
	DMA0 scheduler.Tag = iota
	DMA1
	DMA2
	DMA3

	Timer0Overflow
	Timer1Overflow
	Timer2Overflow
	Timer3Overflow

	APUFrameSequencer
	APUSampleEvent

	VideoHBlankStart
	VideoLineEnd
)
