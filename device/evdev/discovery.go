// Package evdev implements the input-capture side on Linux evdev nodes:
// exclusive pointer capture, device discovery and keyboard hotkeys.
package evdev

import (
	"sort"
	"strings"
)

// DeviceInfo is what discovery needs to know about an input node.
type DeviceInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Phys    string `json:"phys,omitempty"`
	Vendor  uint16 `json:"vendor"`
	Product uint16 `json:"product"`
	// HasRelX and HasBtnLeft together identify a pointer.
	HasRelX    bool `json:"hasRelX"`
	HasBtnLeft bool `json:"hasBtnLeft"`
	// HasKeyP identifies a keyboard usable for hotkeys.
	HasKeyP bool `json:"hasKeyP"`
}

// Candidate is a pointer device ranked by Score.
type Candidate struct {
	DeviceInfo
	Score int `json:"score"`
}

var (
	ignoredNames  = []string{"virtual", "flightstick", "uinput"}
	gamingBrands  = []string{"razer", "logitech", "corsair", "steelseries", "zowie", "benq"}
	keyboardNames = []string{"keyboard", "alloy"}
)

// Ignored reports whether the device is one of ours or another virtual device.
func (d DeviceInfo) Ignored() bool {
	return containsAny(strings.ToLower(d.Name), ignoredNames)
}

// IsPointer reports whether the device can drive the stick.
func (d DeviceInfo) IsPointer() bool {
	return d.HasRelX && d.HasBtnLeft
}

// IsKeyboard reports whether the device can deliver hotkeys.
func (d DeviceInfo) IsKeyboard() bool {
	return d.HasKeyP && !strings.Contains(strings.ToLower(d.Name), "mouse")
}

// Score ranks a pointer: gaming mice first, keyboards with built-in
// pointers last.
func Score(d DeviceInfo) int {
	name := strings.ToLower(d.Name)
	score := 0
	if containsAny(name, gamingBrands) {
		score += 10
	}
	if containsAny(name, keyboardNames) {
		score -= 5
	}
	return score
}

// RankPointers returns the pointer candidates among devs, best first.
// Ties keep the input order.
func RankPointers(devs []DeviceInfo) []Candidate {
	var out []Candidate
	for _, d := range devs {
		if d.Ignored() || !d.IsPointer() {
			continue
		}
		out = append(out, Candidate{DeviceInfo: d, Score: Score(d)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// SelectKeyboard returns the hotkey source: the first keyboard that is not
// ignored, or fallback when none exists.
func SelectKeyboard(devs []DeviceInfo, fallback string) string {
	for _, d := range devs {
		if !d.Ignored() && d.IsKeyboard() {
			return d.Path
		}
	}
	return fallback
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
