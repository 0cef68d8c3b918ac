// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"golang.org/x/xerrors"
)

// MaxPacketLen bounds the payload length the Reader accepts.
const MaxPacketLen = 1 << 20

var (
	// ErrBadTag is returned when a frame does not start with PacketTag.
	ErrBadTag = errors.New("wire: not a Trace.packet frame")

	// ErrPacketTooLarge is returned for frames longer than MaxPacketLen.
	ErrPacketTooLarge = errors.New("wire: packet too large")
)

// Reader splits a framed byte stream back into packet payloads.
type Reader struct {
	r   *bufio.Reader
	buf []byte
	off int64
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Offset returns the stream offset of the next frame.
func (r *Reader) Offset() int64 { return r.off }

// Next returns the payload of the next frame. The returned slice is only
// valid until the following call to Next.
//
// At the end of a well-formed stream Next returns io.EOF. A stream that
// ends inside a frame yields io.ErrUnexpectedEOF.
func (r *Reader) Next() ([]byte, error) {
	tag, err := r.r.ReadByte()
	if err != nil {
		return nil, err
	}
	if tag != PacketTag {
		return nil, xerrors.Errorf("offset %d: tag 0x%02x: %w", r.off, tag, ErrBadTag)
	}
	n, err := binary.ReadUvarint(r.r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, xerrors.Errorf("offset %d: reading length: %w", r.off, err)
	}
	if n > MaxPacketLen {
		return nil, xerrors.Errorf("offset %d: %d bytes: %w", r.off, n, ErrPacketTooLarge)
	}
	if uint64(cap(r.buf)) < n {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, xerrors.Errorf("offset %d: reading payload: %w", r.off, err)
	}
	r.off += int64(FrameLen(int(n)))
	return r.buf, nil
}
