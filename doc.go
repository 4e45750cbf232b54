// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package netkit provides HTTP requests whose lifecycle can be extended by
endpoints, with content-type driven body decoding and mock substitution.

Create a Request for an Endpoint, configure it, and start it once. The
completion runs exactly once, on the queue given to Start.

	r, err := netkit.NewRequest(netkit.Named("api"), "GET")
	...
	r.URL.Host = "api.example.com"
	r.URL.Path = "/v1/listings"
	r.URL.AddQuery("page", "2")
	r.Start(netkit.Background, func(v interface{}, resp *http.Response, err error) {
		...
	})

For typed results, use Begin. A response outside the request's success
range is reported as an Issue, not as an error:

	netkit.Begin(r, queue, func(res netkit.Result[map[string]interface{}]) {
		switch res.Kind() {
		case netkit.KindSuccess:
			v, _ := res.Value()
			...
		case netkit.KindIssue:
			issue, _ := res.Issue()
			log.Printf("HTTP %d: %s", issue.StatusCode(), issue.Reason)
		case netkit.KindFailure:
			...
		}
	})

An endpoint hooks into every request created for it by implementing any
of the capability interfaces: SessionProvider, Configurer, Controller,
URLRequestConfigurer, ResponseParser, MockSupplier and ReasonExtractor.
For example, an endpoint signing its requests:

	type signedAPI struct {
		netkit.Named
		key []byte
	}

	func (a *signedAPI) Configure(r *netkit.Request, _ netkit.Flags) error {
		r.URL.Host = "api.example.com"
		return nil
	}

	func (a *signedAPI) ConfigureURLRequest(p *request.Plan, _ *netkit.Request, _ netkit.Flags) error {
		p.Header.Set("X-Signature", sign(a.key, p))
		return nil
	}

Process-wide settings such as the User-Agent header live in
DefaultClient. To observe requests, install handlers in a Client:

	handlers := &netkit.HandlerGroup{}
	handlers.PushBack(netkit.RequestCompleted, netkit.HandlerFunc(
		func(_ netkit.Event, r *netkit.Request) {
			e := r.Execution()
			log.Printf("#%d %s in %s", e.UID, r.URL.String(), e.Duration())
		}),
	)
	netkit.DefaultClient.Handlers = handlers

Package gate provides ready-made Controllers, package mock a
MockManager, and package observe handlers for metrics, tracing and
access logs.
*/
package netkit
