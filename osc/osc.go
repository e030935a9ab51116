// Package osc provides the clock source that drives tickable components.
package osc

import (
	"time"

	"github.com/mosbit/m6502/translate"
)

var f = translate.From

// Tickable is advanced by one unit of work per clock tick.
type Tickable interface {
	Tick() error
}

// TickError wraps a device failure with the name it was connected under.
type TickError struct {
	Name string
	Err  error
}

func (e *TickError) Error() string {
	return f("failed to tick %q: %v", e.Name, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

type device struct {
	name string
	dev  Tickable
}

// Oscillator ticks its connected devices at a nominal frequency.
// Stopping is cooperative: the stop flag is checked between ticks and
// never interrupts a tick in progress.
type Oscillator struct {
	// Unpaced disables wall-clock pacing; ticks run back to back.
	// Used by tests and batch execution.
	Unpaced bool

	interval time.Duration
	devices  []device
	lastPass time.Time
	stopped  bool
}

// New creates an oscillator with the given tick interval.
func New(interval time.Duration) *Oscillator {
	return &Oscillator{
		interval: interval,
		lastPass: time.Now(),
	}
}

// FromMegahertz creates an oscillator at a nominal frequency in MHz.
func FromMegahertz(mhz float64) *Oscillator {
	return New(time.Duration(float64(time.Second) / (mhz * 1e6)))
}

// Connect registers a device to be ticked. Devices tick in the order
// they were connected.
func (o *Oscillator) Connect(name string, dev Tickable) {
	o.devices = append(o.devices, device{name: name, dev: dev})
}

// Stop requests the run loop to exit before its next tick.
func (o *Oscillator) Stop() {
	o.stopped = true
}

// Stopped reports whether a stop has been requested.
func (o *Oscillator) Stopped() bool {
	return o.stopped
}

// Tick advances every connected device once, pacing wall-clock time to
// the configured interval unless Unpaced is set.
func (o *Oscillator) Tick() error {
	if !o.Unpaced {
		next := o.lastPass.Add(o.interval)
		if wait := time.Until(next); wait > 0 {
			time.Sleep(wait)
		}
		o.lastPass = time.Now()
	}
	for i := range o.devices {
		if err := o.devices[i].dev.Tick(); err != nil {
			return &TickError{Name: o.devices[i].name, Err: err}
		}
	}
	return nil
}

// Run ticks until Stop is called or a device fails. The stop flag is
// cleared on entry so the oscillator can be restarted.
func (o *Oscillator) Run() error {
	o.stopped = false
	o.lastPass = time.Now()
	for !o.stopped {
		if err := o.Tick(); err != nil {
			return err
		}
	}
	return nil
}
