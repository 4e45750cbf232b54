// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package gate provides ready-made control gates for netkit endpoints.

A control gate is a netkit.Controller: the request lifecycle stops
before building the wire request and waits for the gate to let it
proceed. The gates here hold requests back to protect a service:

• Limiter bounds the number of requests in flight.

• Rate spaces requests out with a token bucket.

• Window bounds the number of requests started within one or more
sliding windows of time.

Chain combines gates. Endpoints usually embed a gate:

	type api struct {
		netkit.Named
		*gate.Limiter
	}

	ep := api{"api", gate.NewLimiter(4)}

Every gate gives up when the request's context is done, so cancelled
requests never hold a place.
*/
package gate
