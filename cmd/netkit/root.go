// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "netkit",
		Short:   "Fetch URLs through the netkit request lifecycle",
		Version: version,
		Long: `netkit sends HTTP requests the way applications built on the netkit
library do: the response body is decoded by content type, and responses
can be replayed from, or recorded to, a mock store configured in
netkit.yaml or NETKIT_ environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "settings file (default: ./netkit.yaml or ~/.netkit/netkit.yaml)")
	root.AddCommand(newFetchCmd())
	return root
}
