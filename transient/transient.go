// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the category of a particular error, as reported by
// function Categorize().
//
// The category Not means the error is neither a cancellation nor
// transient from the perspective of completing an HTTP request
// successfully.
type Category int

const (
	// Not indicates any error which is not a cancellation and not
	// transient.
	Not Category = iota
	// Cancelled indicates the request was cancelled, either through
	// netkit.Request.Cancel, by cancelling the request context, or
	// because its session was invalidated.
	//
	// Function Categorize() will return Cancelled if the error or any
	// of its wrapped causes is context.Canceled.
	Cancelled
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer (increasing its timeout).
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Function Categorize() will return ConnRefused if the error is not
	// a Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	//
	// Function Categorize() will return ConnReset if the error is not a
	// Timeout, and the error or any of its wrapped causes is equal to
	// syscall.ECONNRESET.
	ConnReset
)

var categoryNames = []string{
	"Not",
	"Cancelled",
	"Timeout",
	"ConnRefused",
	"ConnReset",
}

// String returns the name of the category.
func (cat Category) String() string {
	if cat < 0 || int(cat) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[cat]
}

// Categorize returns the category of the given error. A nil error, and
// an error that is neither a cancellation nor transient, both produce
// the return value Not.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. A cancellation takes
// precedence over everything else.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	if errors.Is(err, context.Canceled) {
		return Cancelled
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
