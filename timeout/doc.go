// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for choosing the transport timeout
// of a request which does not carry its own explicit timeout. A generic
// interface for timeout policies is provided, Policy, along with
// several useful policy generating functions and built-in policies.
//
// A per-request timeout always wins over the policy: the lifecycle only
// consults the policy when netkit.Request.Timeout is zero.
package timeout
