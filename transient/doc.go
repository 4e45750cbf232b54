// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package transient classifies the errors surfaced by a netkit request
lifecycle.

Use Categorize to learn whether an error represents a cancellation, a
client-side timeout, or a connection-level failure that is likely to
clear up by itself.
*/
package transient
