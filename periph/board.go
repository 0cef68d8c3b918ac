// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"errors"
	"io"

	"github.com/rtos-tracing/ktrace/track"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Board is the static peripheral topology of a target.
type Board struct {
	GPIO []GPIOPort     `yaml:"gpio"`
	UART []UARTInstance `yaml:"uart"`
}

// ErrBadBoard is wrapped by every validation error LoadBoard returns.
var ErrBadBoard = errors.New("invalid board")

// LoadBoard reads a YAML board description:
//
//	gpio:
//	  - device: gpio@40014000
//	    name: gpio0
//	    ngpios: 30
//	uart:
//	  - device: uart0
//
// Ports and instances get the UUID ranges of their position in the file.
func LoadBoard(r io.Reader) (*Board, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var b Board
	if err := dec.Decode(&b); err != nil && err != io.EOF {
		return nil, xerrors.Errorf("decoding board: %w", err)
	}
	seen := map[string]bool{}
	for i := range b.GPIO {
		p := &b.GPIO[i]
		if p.Device == "" {
			return nil, xerrors.Errorf("gpio %d: missing device: %w", i, ErrBadBoard)
		}
		if seen[p.Device] {
			return nil, xerrors.Errorf("gpio %d: duplicate device %q: %w", i, p.Device, ErrBadBoard)
		}
		seen[p.Device] = true
		if p.NGPIOs < 0 || p.NGPIOs > MaxPins {
			return nil, xerrors.Errorf("gpio %q: ngpios %d out of range [0, %d]: %w", p.Device, p.NGPIOs, MaxPins, ErrBadBoard)
		}
		if p.NGPIOs == 0 {
			p.NGPIOs = MaxPins
		}
		if p.Name == "" {
			p.Name = p.Device
		}
		p.Base = track.GPIOBase(i)
	}
	for i := range b.UART {
		u := &b.UART[i]
		if u.Device == "" {
			return nil, xerrors.Errorf("uart %d: missing device: %w", i, ErrBadBoard)
		}
		if seen[u.Device] {
			return nil, xerrors.Errorf("uart %d: duplicate device %q: %w", i, u.Device, ErrBadBoard)
		}
		seen[u.Device] = true
		if u.Name == "" {
			u.Name = u.Device
		}
		u.Base, _, _ = track.UART(i)
	}
	return &b, nil
}
