// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/gogama/netkit/request"
)

var (
	// ErrBadURL is the error wrapped in the *url.Error delivered when a
	// request's URL builder does not describe an absolute URL at the
	// time the request is built.
	ErrBadURL = request.ErrBadURL

	// ErrGateTimeout is the error wrapped in the *url.Error delivered
	// when an endpoint's control gate does not let the request proceed
	// within Client.GateTimeout.
	ErrGateTimeout = errors.New("netkit: control gate timeout")

	// ErrSessionInvalidated is returned by a session that can no longer
	// create tasks. The request lifecycle reports it to the caller as a
	// cancellation.
	ErrSessionInvalidated = errors.New("netkit: session invalidated")
)

// IsCancelled reports whether err is the error delivered to a request
// that was cancelled.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// A TypeError is delivered by Begin when the decoded value of a
// successful response is not of the result type requested.
type TypeError struct {
	// Type is the requested result type.
	Type reflect.Type
	// Value is the decoded value that could not be converted.
	Value interface{}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("netkit: decoded value of type %T is not %v", e.Value, e.Type)
}

func urlErrorWrap(method, rawURL string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: rawURL,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
