// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package atomicfile writes trace files so that readers only ever see
// the previous file or the finished one.
//
// Output is staged in a hidden temporary file next to the destination
// and renamed over it on Commit. Destinations ending in ".gz" are gzip
// compressed on the way through.
//
// Caveat: this relies on rename(2) being atomic, which is not the case
// on NFS with multiple clients.
package atomicfile

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/xerrors"
)

// ErrClosed is returned by Write and Commit after the file was committed
// or aborted.
var ErrClosed = xerrors.New("atomicfile: already closed")

// File is a pending trace file.
type File struct {
	f    *os.File
	zw   *gzip.Writer
	w    io.Writer
	path string
	done bool
}

// Create starts a pending file that replaces path on Commit.
func Create(path string) (*File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, xerrors.Errorf("atomicfile: %w", err)
	}
	p := &File{f: f, w: f, path: path}
	if Compressed(path) {
		p.zw = gzip.NewWriter(f)
		p.zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
		p.w = p.zw
	}
	return p, nil
}

// Compressed reports whether path names a gzip compressed trace.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// Path returns the destination path.
func (p *File) Path() string { return p.path }

func (p *File) Write(b []byte) (int, error) {
	if p.done {
		return 0, ErrClosed
	}
	return p.w.Write(b)
}

// Commit flushes the file to disk and renames it over the destination.
// On failure the temporary file is removed.
func (p *File) Commit() error {
	if p.done {
		return ErrClosed
	}
	p.done = true
	if err := p.commit(); err != nil {
		p.f.Close()
		os.Remove(p.f.Name())
		return xerrors.Errorf("atomicfile: commit %s: %w", p.path, err)
	}
	return nil
}

func (p *File) commit() error {
	if p.zw != nil {
		if err := p.zw.Close(); err != nil {
			return err
		}
	}
	// Without the fsync a zero length file is a valid outcome of a crash
	// after the rename, even on ordered file systems.
	if err := p.f.Sync(); err != nil {
		return err
	}
	if err := p.f.Close(); err != nil {
		return err
	}
	return os.Rename(p.f.Name(), p.path)
}

// Abort discards the pending file. It is a no-op after Commit, so it can
// be deferred right after Create.
func (p *File) Abort() error {
	if p.done {
		return nil
	}
	p.done = true
	closeErr := p.f.Close()
	if err := os.Remove(p.f.Name()); err != nil {
		return err
	}
	return closeErr
}

// Open opens a trace file for reading, decompressing ".gz" files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}
