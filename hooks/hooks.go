// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hooks implements the kernel's tracing hooks on top of an encoder.
//
// The kernel calls one Tracer method per hook. Each method does nothing
// until Init has run, and each translates its event into zero or more
// encoder calls. Methods never fail and never block.
package hooks

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/rtos-tracing/ktrace/encoder"
	"github.com/rtos-tracing/ktrace/periph"
	"github.com/rtos-tracing/ktrace/track"
)

// Event names interned by Init.
const (
	EventRunning     = "Running"
	EventISR         = "ISR"
	EventIdle        = "Idle"
	EventSemTake     = "sem_take"
	EventSemGive     = "sem_give"
	EventMutexLock   = "mutex_lock"
	EventMutexUnlock = "mutex_unlock"
)

// Kernel is what the hooks need to know about the running kernel.
type Kernel interface {
	// CurrentThread returns the thread running on this CPU, if any.
	CurrentThread() (track.ThreadID, bool)

	// ThreadName returns the name of a thread, or "" if it has none.
	ThreadName(track.ThreadID) string
}

// Object identifies a kernel synchronization object.
type Object uint64

// Tracer receives kernel hooks.
type Tracer struct {
	enc  *encoder.Encoder
	k    Kernel
	gpio *periph.GPIO
	uart *periph.UART
	log  logr.Logger

	initialized bool
	isrTrack    bool

	catKernel, catThread, catISR, catSync uint64

	evRunning, evISR, evIdle   uint64
	evSemTake, evSemGive       uint64
	evMutexLock, evMutexUnlock uint64

	uartName [encoder.MaxNameLen]byte
}

// New returns a Tracer feeding enc. If board is not nil its GPIO ports and
// UARTs are traced and their tracks are attached to enc's start sequence.
func New(enc *encoder.Encoder, k Kernel, board *periph.Board, log logr.Logger) *Tracer {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	t := &Tracer{enc: enc, k: k, log: log.WithName("hooks")}
	if board != nil {
		t.gpio = periph.NewGPIO(enc, board.GPIO)
		t.uart = periph.NewUART(enc, board.UART)
		enc.SetTopology(t.gpio, t.uart)
	}
	return t
}

// Init runs once the kernel is up. It initializes the encoder and interns
// the categories and event names the hooks use. Only the first call has
// any effect.
func (t *Tracer) Init() {
	if t.initialized {
		return
	}
	t.enc.Init()

	t.catKernel = t.enc.InternCategory(encoder.CategoryKernel)
	t.catThread = t.enc.InternCategory(encoder.CategoryThread)
	t.catISR = t.enc.InternCategory(encoder.CategoryISR)
	t.catSync = t.enc.InternCategory(encoder.CategorySync)

	t.evRunning = t.enc.InternEventName(EventRunning)
	t.evISR = t.enc.InternEventName(EventISR)
	t.evIdle = t.enc.InternEventName(EventIdle)
	t.evSemTake = t.enc.InternEventName(EventSemTake)
	t.evSemGive = t.enc.InternEventName(EventSemGive)
	t.evMutexLock = t.enc.InternEventName(EventMutexLock)
	t.evMutexUnlock = t.enc.InternEventName(EventMutexUnlock)

	t.initialized = true
	t.log.Info("tracing hooks ready")
}

// ThreadCreate writes the descriptor of a new thread unless one has
// already been written.
func (t *Tracer) ThreadCreate(id track.ThreadID) {
	if !t.initialized {
		return
	}
	if !t.enc.ThreadDescriptorEmitted(id) {
		t.enc.EmitThreadDescriptor(id, t.k.ThreadName(id))
	}
}

// ThreadNameSet writes the thread's descriptor again with its new name.
func (t *Tracer) ThreadNameSet(id track.ThreadID, ret int) {
	if !t.initialized {
		return
	}
	t.enc.EmitThreadDescriptor(id, t.k.ThreadName(id))
}

// ThreadSwitchedOut ends the Running slice of the current thread.
func (t *Tracer) ThreadSwitchedOut() {
	if !t.initialized {
		return
	}
	if id, ok := t.k.CurrentThread(); ok {
		t.enc.EmitSliceEnd(track.Thread(id))
	}
}

// ThreadSwitchedIn begins a Running slice on the current thread, writing
// its descriptor first if needed.
func (t *Tracer) ThreadSwitchedIn() {
	if !t.initialized {
		return
	}
	id, ok := t.k.CurrentThread()
	if !ok {
		return
	}
	if !t.enc.ThreadDescriptorEmitted(id) {
		t.enc.EmitThreadDescriptor(id, t.k.ThreadName(id))
	}
	t.enc.EmitSliceBegin(track.Thread(id), t.evRunning, t.catThread)
}

// ISREnter begins a slice on the ISR track. The track's descriptor is
// written on the first interrupt after the trace starts.
func (t *Tracer) ISREnter() {
	if !t.initialized {
		return
	}
	if !t.isrTrack {
		t.enc.EmitTrackDescriptor(track.ISR, track.Process, "ISR")
		t.isrTrack = t.enc.Started()
	}
	t.enc.EmitSliceBegin(track.ISR, t.evISR, t.catISR)
}

// ISRExit ends the slice on the ISR track.
func (t *Tracer) ISRExit() {
	if !t.initialized {
		return
	}
	t.enc.EmitSliceEnd(track.ISR)
}

// Idle marks the CPU going idle with an instant on the process track.
func (t *Tracer) Idle() {
	if !t.initialized {
		return
	}
	t.enc.EmitInstant(track.Process, t.evIdle, t.catKernel)
}

// IdleExit does nothing; the next ThreadSwitchedIn shows the wakeup.
func (t *Tracer) IdleExit() {}

func (t *Tracer) begin(name uint64) {
	if !t.initialized {
		return
	}
	if id, ok := t.k.CurrentThread(); ok {
		t.enc.EmitSliceBegin(track.Thread(id), name, t.catSync)
	}
}

func (t *Tracer) end() {
	if !t.initialized {
		return
	}
	if id, ok := t.k.CurrentThread(); ok {
		t.enc.EmitSliceEnd(track.Thread(id))
	}
}

// Semaphore and mutex operations appear as slices on the acting thread's
// track. The slice covers any time spent blocked, so the blocking hooks
// write nothing.

func (t *Tracer) SemInit(sem Object, ret int) {}

func (t *Tracer) SemGiveEnter(sem Object) { t.begin(t.evSemGive) }

func (t *Tracer) SemGiveExit(sem Object) { t.end() }

func (t *Tracer) SemTakeEnter(sem Object, timeout time.Duration) { t.begin(t.evSemTake) }

func (t *Tracer) SemTakeBlocking(sem Object, timeout time.Duration) {}

func (t *Tracer) SemTakeExit(sem Object, timeout time.Duration, ret int) { t.end() }

func (t *Tracer) MutexInit(m Object, ret int) {}

func (t *Tracer) MutexLockEnter(m Object, timeout time.Duration) { t.begin(t.evMutexLock) }

func (t *Tracer) MutexLockBlocking(m Object, timeout time.Duration) {}

func (t *Tracer) MutexLockExit(m Object, timeout time.Duration, ret int) { t.end() }

func (t *Tracer) MutexUnlockEnter(m Object) { t.begin(t.evMutexUnlock) }

func (t *Tracer) MutexUnlockExit(m Object, ret int) { t.end() }
