// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim runs a small deterministic kernel against the tracing hooks.
//
// The simulated kernel owns a handful of threads and a virtual clock. Each
// step schedules a thread, lets it use semaphores and mutexes, take
// interrupts, drive GPIO pins and send on UARTs, or puts the CPU to idle.
// The same Config always produces the same trace bytes.
package sim

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rtos-tracing/ktrace/encoder"
	"github.com/rtos-tracing/ktrace/hooks"
	"github.com/rtos-tracing/ktrace/periph"
	"github.com/rtos-tracing/ktrace/track"
	"github.com/rtos-tracing/ktrace/wire"
)

const (
	DefaultThreads = 4
	DefaultSteps   = 100

	// threadBase is the identity of the first thread; threads are spaced
	// like control blocks in RAM.
	threadBase   = 0x20001000
	threadStride = 0x100

	// byteTime is one UART byte at 115200 baud, 8N1.
	byteTime = 86806
)

// Config describes a simulation run.
type Config struct {
	// Threads is the number of worker threads. Zero selects DefaultThreads.
	Threads int

	// Steps is the number of scheduling steps. Zero selects DefaultSteps.
	Steps int

	Seed uint64

	// Board is the peripheral topology. Nil simulates no peripherals.
	Board *periph.Board

	// Encoder configures the encoder. Its Clock is replaced by the
	// simulation clock.
	Encoder encoder.Options

	Logger logr.Logger
}

type thread struct {
	id   track.ThreadID
	name string
}

// Sim is a simulated kernel wired to an encoder.
type Sim struct {
	cfg     Config
	rng     pcg
	now     uint64
	threads []thread
	cur     int
	running bool
	msg     []byte

	enc *encoder.Encoder
	tr  *hooks.Tracer
	log logr.Logger
}

// New returns a simulation writing its trace to sink.
func New(sink wire.Sink, cfg Config) *Sim {
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads
	}
	if cfg.Steps <= 0 {
		cfg.Steps = DefaultSteps
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
	s := &Sim{cfg: cfg, rng: pcg{state: cfg.Seed}, log: cfg.Logger.WithName("sim")}
	for i := 0; i < cfg.Threads; i++ {
		s.threads = append(s.threads, thread{
			id:   track.ThreadID(threadBase + i*threadStride),
			name: fmt.Sprintf("worker%d", i),
		})
	}
	opts := cfg.Encoder
	opts.Clock = s.clock
	if opts.Logger.GetSink() == nil {
		opts.Logger = cfg.Logger
	}
	s.enc = encoder.New(sink, &opts)
	s.tr = hooks.New(s.enc, s, cfg.Board, cfg.Logger)
	return s
}

// Encoder returns the encoder the simulation feeds.
func (s *Sim) Encoder() *encoder.Encoder { return s.enc }

// Now returns the simulated time in nanoseconds since boot.
func (s *Sim) Now() uint64 { return s.now }

func (s *Sim) clock() uint64 { return s.now }

// CurrentThread implements hooks.Kernel.
func (s *Sim) CurrentThread() (track.ThreadID, bool) {
	if !s.running {
		return 0, false
	}
	return s.threads[s.cur].id, true
}

// ThreadName implements hooks.Kernel. Odd numbered threads are renamed
// after creation, so before that they have no name.
func (s *Sim) ThreadName(id track.ThreadID) string {
	for _, t := range s.threads {
		if t.id == id {
			return t.name
		}
	}
	return ""
}

// advance moves the clock forward by 1 to max microseconds.
func (s *Sim) advance(max int) {
	s.now += uint64(1+s.rng.Intn(max)) * 1000
}

// Run boots the kernel and runs the configured number of steps. It stops
// early, leaving every slice closed, when ctx is done.
func (s *Sim) Run(ctx context.Context) error {
	s.boot()
	var err error
	for step := 0; step < s.cfg.Steps; step++ {
		if err = ctx.Err(); err != nil {
			break
		}
		s.step()
	}
	s.switchOut()
	st := s.enc.Stats()
	s.log.Info("simulation done", "time", s.now, "packets", st.Packets, "dropped", st.Dropped)
	return err
}

func (s *Sim) boot() {
	s.advance(100)
	s.tr.Init()
	for i, t := range s.threads {
		s.advance(10)
		if i%2 == 1 {
			// Created without a name and named later.
			name := t.name
			s.threads[i].name = ""
			s.tr.ThreadCreate(t.id)
			s.threads[i].name = name
			s.tr.ThreadNameSet(t.id, 0)
			continue
		}
		s.tr.ThreadCreate(t.id)
	}
}

func (s *Sim) step() {
	if s.rng.chance(8) {
		s.idle()
		return
	}
	s.switchTo(s.rng.Intn(len(s.threads)))
	for n := 1 + s.rng.Intn(3); n > 0; n-- {
		s.act()
	}
}

func (s *Sim) switchTo(i int) {
	if s.running && s.cur == i {
		return
	}
	s.switchOut()
	s.advance(5)
	s.cur, s.running = i, true
	s.tr.ThreadSwitchedIn()
}

func (s *Sim) switchOut() {
	if !s.running {
		return
	}
	s.advance(5)
	s.tr.ThreadSwitchedOut()
	s.running = false
}

func (s *Sim) idle() {
	s.switchOut()
	s.advance(5)
	s.tr.Idle()
	s.advance(500)
	s.tr.IdleExit()
}

// act performs one action on the running thread.
func (s *Sim) act() {
	s.advance(50)
	obj := hooks.Object(0x20008000 + s.rng.Intn(4)*0x10)
	switch s.rng.Intn(6) {
	case 0:
		s.tr.SemTakeEnter(obj, 0)
		if s.rng.chance(2) {
			s.tr.SemTakeBlocking(obj, 0)
		}
		s.advance(20)
		s.tr.SemTakeExit(obj, 0, 0)
	case 1:
		s.tr.SemGiveEnter(obj)
		s.advance(5)
		s.tr.SemGiveExit(obj)
	case 2:
		s.tr.MutexLockEnter(obj, 0)
		s.advance(20)
		s.tr.MutexLockExit(obj, 0, 0)
		s.advance(50)
		s.tr.MutexUnlockEnter(obj)
		s.advance(5)
		s.tr.MutexUnlockExit(obj, 0)
	case 3:
		s.interrupt()
	case 4:
		s.gpio()
	case 5:
		s.uart()
	}
}

func (s *Sim) interrupt() {
	s.tr.ISREnter()
	s.advance(10)
	s.tr.ISRExit()
}

func (s *Sim) gpio() {
	if s.cfg.Board == nil || len(s.cfg.Board.GPIO) == 0 {
		s.interrupt()
		return
	}
	p := s.cfg.Board.GPIO[s.rng.Intn(len(s.cfg.Board.GPIO))]
	n := p.NGPIOs
	if n <= 0 || n > periph.MaxPins {
		n = periph.MaxPins
	}
	pins := uint32(1) << s.rng.Intn(n)
	switch s.rng.Intn(3) {
	case 0:
		s.tr.GPIOPortSetBitsRawEnter(p.Device, pins)
		s.tr.GPIOPortSetBitsRawExit(p.Device, 0)
	case 1:
		s.tr.GPIOPortClearBitsRawEnter(p.Device, pins)
		s.tr.GPIOPortClearBitsRawExit(p.Device, 0)
	case 2:
		s.tr.GPIOPortToggleBitsEnter(p.Device, pins)
		s.tr.GPIOPortToggleBitsExit(p.Device, 0)
	}
}

func (s *Sim) uart() {
	if s.cfg.Board == nil || len(s.cfg.Board.UART) == 0 {
		s.interrupt()
		return
	}
	u := s.cfg.Board.UART[s.rng.Intn(len(s.cfg.Board.UART))]
	s.msg = fmt.Appendf(s.msg[:0], "%s t=%d\r\n", s.threads[s.cur].name, s.now/1000)
	start := s.now
	dur := uint64(len(s.msg)) * byteTime
	if s.rng.chance(3) {
		s.tr.UARTRx(u.Device, s.msg, start, dur)
	} else {
		s.tr.UARTTx(u.Device, s.msg, start, dur)
	}
	s.now += dur
}
