// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the wire-level building blocks of a netkit
request: URLBuilder (assembles the request URL from components), Plan
(the materialised request handed to a transport session) and Execution
(the state of one request lifecycle).

Callers rarely create Plans or Executions themselves. The lifecycle in
package netkit builds a Plan from a request once its endpoint has
configured it:

	r.URL.Host = "api.example.com"
	r.URL.Path = "/v1/items"
	r.URL.AddQuery("page", "2")

and hands the Plan to endpoints that rewrite wire requests, for example
to sign them:

	func (ep *signer) ConfigureURLRequest(p *request.Plan, r *netkit.Request, flags netkit.Flags) error {
		p.Header.Set("X-Signature", ep.sign(p.Method, p.URL.String(), p.Body))
		return nil
	}

The Execution of a request is available to notification handlers and,
after completion, from the request itself.
*/
package request
