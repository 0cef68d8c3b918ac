// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package periph

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// TestLoadBoard runs the cases in testdata/boards.txtar. Each case is a
// NAME.yaml file followed by NAME.want, the expected board, or NAME.err,
// a substring of the expected error.
func TestLoadBoard(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/boards.txtar")
	if err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{}
	for _, f := range ar.Files {
		files[f.Name] = f.Data
	}
	n := 0
	for _, f := range ar.Files {
		name, ok := strings.CutSuffix(f.Name, ".yaml")
		if !ok {
			continue
		}
		n++
		t.Run(name, func(t *testing.T) {
			b, err := LoadBoard(bytes.NewReader(f.Data))
			if want, ok := files[name+".err"]; ok {
				if err == nil {
					t.Fatal("LoadBoard succeeded, want error")
				}
				if !strings.Contains(err.Error(), strings.TrimSpace(string(want))) {
					t.Errorf("error %q does not contain %q", err, want)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(string(files[name+".want"]), formatBoard(b)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if n == 0 {
		t.Fatal("no cases")
	}
}

func formatBoard(b *Board) string {
	var sb strings.Builder
	for _, p := range b.GPIO {
		fmt.Fprintf(&sb, "gpio %s %s %d %#x\n", p.Device, p.Name, p.NGPIOs, p.Base)
	}
	for _, u := range b.UART {
		fmt.Fprintf(&sb, "uart %s %s %#x\n", u.Device, u.Name, u.Base)
	}
	return sb.String()
}

func TestLoadBoardErrBadBoard(t *testing.T) {
	_, err := LoadBoard(strings.NewReader("gpio:\n  - name: x\n"))
	if !errors.Is(err, ErrBadBoard) {
		t.Errorf("err = %v, want ErrBadBoard", err)
	}
}
