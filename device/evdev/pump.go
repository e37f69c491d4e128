package evdev

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Alia5/flightstick/device"
)

const pumpBuffer = 1024

// pump moves events from a blocking read function onto a buffered channel so
// the engine can drain them without blocking.
type pump struct {
	events chan device.Event
	done   chan struct{}

	mu  sync.Mutex
	err error

	stopOnce sync.Once
}

func newPump(read func() ([]device.Event, error)) *pump {
	p := &pump{
		events: make(chan device.Event, pumpBuffer),
		done:   make(chan struct{}),
	}
	go p.run(read)
	return p
}

func (p *pump) run(read func() ([]device.Event, error)) {
	defer close(p.events)
	for {
		evs, err := read()
		if err != nil {
			select {
			case <-p.done:
			default:
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
			}
			return
		}
		for _, ev := range evs {
			select {
			case p.events <- ev:
			case <-p.done:
				return
			}
		}
	}
}

// drain returns every queued event. Once the reader has failed and the queue
// is empty it returns device.ErrCaptureLost wrapping the read error.
func (p *pump) drain() ([]device.Event, error) {
	var out []device.Event
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				if len(out) > 0 {
					return out, nil
				}
				return nil, p.lostErr()
			}
			out = append(out, ev)
		default:
			return out, nil
		}
	}
}

func (p *pump) lostErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		return device.ErrCaptureLost
	}
	if errors.Is(p.err, device.ErrCaptureLost) {
		return p.err
	}
	return fmt.Errorf("%w: %v", device.ErrCaptureLost, p.err)
}

// stop makes run exit at its next send or read error.
func (p *pump) stop() {
	p.stopOnce.Do(func() { close(p.done) })
}
