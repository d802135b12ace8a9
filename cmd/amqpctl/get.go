// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:     "get",
	Short:   "Fetch a single message from a queue without subscribing",
	Example: "# amqpctl get --queue jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()

		conn, err := dial(ctx, "get")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to dial broker: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close(ctx)

		ch, err := conn.OpenChannel(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open channel: %v\n", err)
			os.Exit(1)
		}

		d, ok, err := ch.BasicGet(ctx, getQueue, getNoAck)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("queue empty")
			return
		}
		fmt.Printf("delivery tag=%d routing-key=%q body=%q\n", d.DeliveryTag, d.RoutingKey, d.Body)
		if !getNoAck {
			if err := ch.BasicAck(d.DeliveryTag, false); err != nil {
				fmt.Fprintf(os.Stderr, "failed to ack delivery %d: %v\n", d.DeliveryTag, err)
			}
		}
	},
}

var (
	getQueue string
	getNoAck bool
)

func init() {
	getCmd.Flags().StringVar(&getQueue, "queue", "", "Queue to fetch from")
	getCmd.Flags().BoolVar(&getNoAck, "no-ack", false, "Fetch without manual acknowledgement")
	rootCmd.AddCommand(getCmd)
}
