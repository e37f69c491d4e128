// Package hud renders engine telemetry in the terminal.
package hud

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/Alia5/flightstick/engine"
)

// Source provides the data to draw.
type Source interface {
	HUD() engine.HUD
}

// Layout of the stick panel. Half sizes are in cells from the center.
const (
	stickHalfW = 10
	stickHalfH = 5
	headHalfW  = 5
	headHalfH  = 3

	originX = 4
	originY = 2
)

// Marker and bar glyphs.
const (
	markerRune = '●'
	headRune   = '◆'
	fillRune   = '█'
)

var (
	styleBase     = tcell.StyleDefault
	styleFrame    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleDeadzone = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleSnapped  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleSaturate = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleNormal   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleRudder   = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleHead     = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleRunning  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleStopped  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// View draws a Source onto a tcell screen.
type View struct {
	screen tcell.Screen
	src    Source

	// OnRecenter, if set, is called when 'r' is pressed.
	OnRecenter func()
}

// New returns a view. The screen must already be initialized.
func New(screen tcell.Screen, src Source) *View {
	return &View{screen: screen, src: src}
}

// Run redraws every interval until ctx is done or the user quits with q,
// Esc or Ctrl-C.
func (v *View) Run(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
					cancel()
					return
				case ev.Rune() == 'r':
					if v.OnRecenter != nil {
						v.OnRecenter()
					}
				}
			case *tcell.EventResize:
				v.screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		v.Draw()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Draw renders one frame.
func (v *View) Draw() {
	d := v.src.HUD()
	s := v.screen
	s.Clear()

	status, statusStyle := "STOPPED", styleStopped
	if d.Running {
		status, statusStyle = "RUNNING", styleRunning
	}
	v.text(originX, 0, "FLIGHTSTICK", styleTitle)
	v.text(originX+13, 0, status, statusStyle)

	// Stick box with the throttle bar to its left and the rudder bar below.
	cx, cy := originX+stickHalfW+1, originY+stickHalfH+1
	v.box(cx, cy, stickHalfW, stickHalfH)
	s.SetContent(cx, cy, tcell.RunePlus, nil, styleFrame)
	s.SetContent(cx+Cell(d.X, stickHalfW), cy+Cell(d.Y, stickHalfH), markerRune, nil, stickStyle(d))

	v.throttle(originX-3, cy, d.Throttle)
	v.rudder(cx, cy+stickHalfH+2, d.Rudder)

	// Head box to the right.
	hx, hy := cx+stickHalfW+headHalfW+5, originY+headHalfH+1
	v.box(hx, hy, headHalfW, headHalfH)
	v.text(hx-2, hy+headHalfH+2, "HEAD", styleHead)
	s.SetContent(hx+Cell(d.HeadYaw, headHalfW), hy+Cell(d.HeadPitch, headHalfH), headRune, nil, styleHead)

	line := fmt.Sprintf("X %+.2f  Y %+.2f  THR %+.2f  RUD %+.2f  HEAD %+.2f/%+.2f",
		d.X, d.Y, d.Throttle, d.Rudder, d.HeadYaw, d.HeadPitch)
	ty := cy + stickHalfH + 4
	v.text(originX-3, ty, line, styleBase)
	flags := ""
	if d.Snapped {
		flags += "[SNAP] "
	}
	if d.InDeadzone {
		flags += "[DEADZONE]"
	}
	v.text(originX-3, ty+1, flags, styleSnapped)
	v.text(originX-3, ty+3, "q quit  r recenter", styleFrame)
	s.Show()
}

// Cell maps a normalized value in [-1, 1] to a cell offset in [-half, half].
func Cell(v float64, half int) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int(math.Round(v * float64(half)))
}

func stickStyle(d engine.HUD) tcell.Style {
	switch {
	case d.InDeadzone:
		return styleDeadzone
	case d.Snapped:
		return styleSnapped
	case math.Abs(d.X) > 0.99 || math.Abs(d.Y) > 0.99:
		return styleSaturate
	}
	return styleNormal
}

func throttleStyle(t float64) tcell.Style {
	switch {
	case t > 0.95:
		return styleSaturate
	case t < 0:
		return styleStopped
	}
	return styleSnapped
}

// throttle draws a vertical bar centered on cy filled from the bottom.
func (v *View) throttle(x, cy int, t float64) {
	top, bottom := cy-stickHalfH, cy+stickHalfH
	filled := int(math.Round((math.Max(-1, math.Min(1, t)) + 1) / 2 * float64(bottom-top+1)))
	st := throttleStyle(t)
	for y := bottom; y >= top; y-- {
		r := tcell.RuneVLine
		if bottom-y < filled {
			r = fillRune
		}
		v.screen.SetContent(x, y, r, nil, st)
	}
	v.text(x-1, top-1, "THR", styleTitle)
}

// rudder draws a horizontal bar filled from cx toward the deflection.
func (v *View) rudder(cx, y int, r float64) {
	off := Cell(r, stickHalfW)
	for x := -stickHalfW; x <= stickHalfW; x++ {
		ch := tcell.RuneHLine
		if (off > 0 && x > 0 && x <= off) || (off < 0 && x < 0 && x >= off) {
			ch = fillRune
		}
		if x == 0 {
			ch = tcell.RuneBTee
		}
		v.screen.SetContent(cx+x, y, ch, nil, styleRudder)
	}
	v.text(cx-3, y+1, "RUDDER", styleTitle)
}

// box draws a frame enclosing [cx-halfW, cx+halfW] x [cy-halfH, cy+halfH].
func (v *View) box(cx, cy, halfW, halfH int) {
	l, r := cx-halfW-1, cx+halfW+1
	t, b := cy-halfH-1, cy+halfH+1
	for x := l + 1; x < r; x++ {
		v.screen.SetContent(x, t, tcell.RuneHLine, nil, styleFrame)
		v.screen.SetContent(x, b, tcell.RuneHLine, nil, styleFrame)
	}
	for y := t + 1; y < b; y++ {
		v.screen.SetContent(l, y, tcell.RuneVLine, nil, styleFrame)
		v.screen.SetContent(r, y, tcell.RuneVLine, nil, styleFrame)
	}
	v.screen.SetContent(l, t, tcell.RuneULCorner, nil, styleFrame)
	v.screen.SetContent(r, t, tcell.RuneURCorner, nil, styleFrame)
	v.screen.SetContent(l, b, tcell.RuneLLCorner, nil, styleFrame)
	v.screen.SetContent(r, b, tcell.RuneLRCorner, nil, styleFrame)
}

func (v *View) text(x, y int, s string, st tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, st)
		x++
	}
}
