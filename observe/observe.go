// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"strconv"

	"github.com/gogama/netkit"
)

// outcome classifies a completed request for reporting.
func outcome(r *netkit.Request) string {
	e := r.Execution()
	switch {
	case e.Err != nil && netkit.IsCancelled(e.Err):
		return "cancelled"
	case e.Err != nil:
		return "error"
	case e.Response == nil:
		return "none"
	default:
		return strconv.Itoa(e.Response.StatusCode)
	}
}

func endpointID(r *netkit.Request) string {
	if ep := r.Endpoint(); ep != nil {
		return ep.Identifier()
	}
	return ""
}
