package models

import "fmt"

// Slot is one of the 29 fixed half-hour entry options between 06:00 and
// 20:00 inclusive. IDs and labels are stable: the same pair is used to render
// the outbound list and to match inbound replies.
type Slot struct {
	ID    string `json:"id"`    // "time_14_30"
	Label string `json:"label"` // "14:30"
}

// SlotSection groups slots into the two-hour blocks shown as list sections.
// The closing 20:00 slot rides in the last block.
type SlotSection struct {
	Title string `json:"title"`
	Slots []Slot `json:"slots"`
}

const (
	slotStartHour = 6
	slotEndHour   = 20
)

// Interactive reply ids for the two deviation intents.
const (
	ButtonIDUnsure     = "btn_unknown"
	ButtonIDNotContact = "btn_redirect"
)

var (
	slots        []Slot
	slotSections []SlotSection
	slotsByID    = map[string]Slot{}
	slotsByLabel = map[string]Slot{}
)

func init() {
	for blockStart := slotStartHour; blockStart < slotEndHour; blockStart += 2 {
		section := SlotSection{
			Title: fmt.Sprintf("%02d:00–%02d:00", blockStart, blockStart+2),
		}
		for hour := blockStart; hour < blockStart+2; hour++ {
			for _, minute := range []int{0, 30} {
				section.Slots = append(section.Slots, newSlot(hour, minute))
			}
		}
		slotSections = append(slotSections, section)
	}
	// 20:00 closes the range and lands in the final section.
	last := len(slotSections) - 1
	slotSections[last].Slots = append(slotSections[last].Slots, newSlot(slotEndHour, 0))

	for _, s := range slotSections {
		for _, slot := range s.Slots {
			slots = append(slots, slot)
			slotsByID[slot.ID] = slot
			slotsByLabel[slot.Label] = slot
		}
	}
}

func newSlot(hour, minute int) Slot {
	return Slot{
		ID:    fmt.Sprintf("time_%02d_%02d", hour, minute),
		Label: fmt.Sprintf("%02d:%02d", hour, minute),
	}
}

// Slots returns the full 29-entry catalog in chronological order.
func Slots() []Slot {
	return slots
}

// SlotSections returns the catalog grouped for interactive list rendering.
func SlotSections() []SlotSection {
	return slotSections
}

func SlotByID(id string) (Slot, bool) {
	s, ok := slotsByID[id]
	return s, ok
}

func SlotByLabel(label string) (Slot, bool) {
	s, ok := slotsByLabel[label]
	return s, ok
}
