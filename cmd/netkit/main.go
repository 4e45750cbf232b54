// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command netkit fetches URLs through the netkit request lifecycle,
// optionally replaying or recording mock responses.
//
// Usage:
//
//	netkit fetch [flags] URL
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
