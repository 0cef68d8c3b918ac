// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"fmt"

	"github.com/rtos-tracing/ktrace/track"
)

// MaxPins is the largest pin count a GPIO port may have.
const MaxPins = 32

// GPIOPort describes one GPIO controller.
type GPIOPort struct {
	// Device is the kernel's identity for the controller.
	Device string `yaml:"device"`

	// Name is the display name of the port group track.
	Name string `yaml:"name"`

	// NGPIOs is the number of pins. Zero means MaxPins.
	NGPIOs int `yaml:"ngpios"`

	// Base is the first UUID of the port's range. Zero selects the
	// range of the port's position in the board.
	Base uint64 `yaml:"-"`
}

type gpioPort struct {
	GPIOPort
	pins []string // track names
	last uint32
}

// GPIO traces the level of every pin of a set of GPIO ports, one counter
// track per pin. Only pins that change are written.
type GPIO struct {
	em          Emitter
	ports       []gpioPort
	initialized bool
}

// NewGPIO returns a tracer for ports writing to em. Pin counts above
// MaxPins are clamped.
func NewGPIO(em Emitter, ports []GPIOPort) *GPIO {
	g := &GPIO{em: em, ports: make([]gpioPort, len(ports))}
	for i, p := range ports {
		if p.NGPIOs <= 0 || p.NGPIOs > MaxPins {
			p.NGPIOs = MaxPins
		}
		if p.Base == 0 {
			p.Base = track.GPIOBase(i)
		}
		if p.Name == "" {
			p.Name = p.Device
		}
		gp := gpioPort{GPIOPort: p, pins: make([]string, p.NGPIOs)}
		for pin := range gp.pins {
			gp.pins[pin] = fmt.Sprintf("%s.%02d", p.Name, pin)
		}
		g.ports[i] = gp
	}
	return g
}

// InitTracks writes the port group track of every port under the Trace
// track, then a counter track per pin with an initial sample of 0. The
// remembered pin state of every port is reset to 0. Only the first call
// has any effect.
func (g *GPIO) InitTracks() {
	if g.initialized {
		return
	}
	for i := range g.ports {
		p := &g.ports[i]
		group := track.GPIOPort(p.Base)
		g.em.EmitTrackDescriptor(group, track.Trace, p.Name)
		for pin, name := range p.pins {
			uuid := track.GPIOPin(p.Base, pin)
			g.em.EmitCounterTrackDescriptor(uuid, group, name)
			g.em.EmitCounter(uuid, 0)
		}
		p.last = 0
	}
	g.initialized = true
}

// SetMasked records a write of value to the pins in mask.
func (g *GPIO) SetMasked(dev string, mask, value uint32) {
	if p := g.port(dev); p != nil {
		g.update(p, p.last&^mask|value&mask)
	}
}

// SetBits records pins being driven high.
func (g *GPIO) SetBits(dev string, pins uint32) {
	if p := g.port(dev); p != nil {
		g.update(p, p.last|pins)
	}
}

// ClearBits records pins being driven low.
func (g *GPIO) ClearBits(dev string, pins uint32) {
	if p := g.port(dev); p != nil {
		g.update(p, p.last&^pins)
	}
}

// Toggle records pins being inverted.
func (g *GPIO) Toggle(dev string, pins uint32) {
	if p := g.port(dev); p != nil {
		g.update(p, p.last^pins)
	}
}

// State returns the remembered pin levels of a port.
func (g *GPIO) State(dev string) (uint32, bool) {
	for i := range g.ports {
		if g.ports[i].Device == dev {
			return g.ports[i].last, true
		}
	}
	return 0, false
}

// port returns the port for dev, or nil if dev is unknown or the tracks
// have not been written.
func (g *GPIO) port(dev string) *gpioPort {
	if !g.initialized {
		return nil
	}
	for i := range g.ports {
		if g.ports[i].Device == dev {
			return &g.ports[i]
		}
	}
	return nil
}

// update writes one counter sample per pin whose level differs between the
// remembered state and next, then remembers next.
func (g *GPIO) update(p *gpioPort, next uint32) {
	changed := p.last ^ next
	for pin := 0; pin < p.NGPIOs && changed != 0; pin++ {
		bit := uint32(1) << pin
		if changed&bit == 0 {
			continue
		}
		var v int64
		if next&bit != 0 {
			v = 1
		}
		g.em.EmitCounter(track.GPIOPin(p.Base, pin), v)
		changed &^= bit
	}
	p.last = next
}
