// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package mock substitutes stored responses for real ones.

A Manager is the netkit.MockManager (and netkit.MockRecorder) handed
out by an endpoint's Mocks method. It keeps Records in a Store, keyed by
the request's mock key. Stores are provided for memory, a directory of
YAML fixtures, a bbolt database, a Redis server, and a read-only HTTP
base URL serving fixture files:

	m := &mock.Manager{
		Store:   mock.NewDirStore("testdata/mocks"),
		Enabled: true,
	}

	type api struct{ netkit.Named }

	func (api) Mocks() netkit.MockManager { return m }

With Recording set, real responses to requests with a mock key are
saved to the store, so a fixture set can be captured once from a live
service and replayed afterwards.
*/
package mock
