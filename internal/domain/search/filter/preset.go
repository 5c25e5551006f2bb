package filter

import "strings"

// Preset is a named deadline window starting today.
type Preset string

// Deadline presets.
const (
	PresetUrgent   Preset = "urgent"
	Preset2Weeks   Preset = "2weeks"
	Preset1Month   Preset = "1month"
	Preset3Months  Preset = "3months"
	Preset6Months  Preset = "6months"
	Preset1Year    Preset = "1year"
	preset1WeekAlt Preset = "1week"
)

var presetDays = map[Preset]int{
	PresetUrgent:  7,
	Preset2Weeks:  14,
	Preset1Month:  30,
	Preset3Months: 90,
	Preset6Months: 180,
	Preset1Year:   365,
}

// ParsePreset resolves a preset name. "1week" is accepted as an alias of "urgent".
func ParsePreset(s string) (Preset, bool) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	if p == preset1WeekAlt {
		return PresetUrgent, true
	}
	_, ok := presetDays[p]
	return p, ok
}

// Days returns the window length in days, 0 for unknown presets.
func (p Preset) Days() int { return presetDays[p] }
