// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package intern_test

import (
	"fmt"

	"github.com/rtos-tracing/ktrace/intern"
)

func ExampleTable() {
	t := intern.NewTable(2)
	fmt.Println(t.Intern("kernel"), t.Intern("thread"), t.Intern("kernel"))
	fmt.Println(t.Intern("isr"))
	// Output:
	// 1 2 1
	// 0
}
