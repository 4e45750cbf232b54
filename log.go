// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// debug logs a lifecycle step unless the request is quiet.
func (l *lifecycle) debug(msg string, fields logrus.Fields) {
	if l.r.Quiet {
		return
	}
	l.log.WithFields(fields).Debug(msg)
}

func (l *lifecycle) logResponse(body []byte, resp *http.Response, err error) {
	fields := logrus.Fields{
		"mock":     l.r.exec.Mock,
		"duration": l.r.exec.Duration(),
	}
	if resp != nil {
		fields["status"] = resp.StatusCode
		size := sizeOf(body)
		if enc := resp.Header.Get("Content-Encoding"); enc != "" {
			size = enc + " " + size
		}
		fields["size"] = size
	}
	if err != nil {
		fields[logrus.ErrorKey] = err
	}
	l.debug("received response", fields)
}

func sizeOf(b []byte) string {
	return humanize.Bytes(uint64(len(b)))
}
