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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	amqp091 "github.com/rabbitgo/amqp091"
)

var consumeCmd = &cobra.Command{
	Use:     "consume",
	Short:   "Consume messages from a queue until interrupted",
	Example: "# amqpctl consume --queue jobs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		dialCtx, dialCancel := context.WithTimeout(ctx, rpcTimeout)
		conn, err := dial(dialCtx, "consume")
		dialCancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to dial broker: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close(context.Background())

		ch, err := conn.OpenChannel(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open channel: %v\n", err)
			os.Exit(1)
		}

		tag, deliveries, err := ch.BasicConsume(ctx, amqp091.ConsumeArgs{
			Queue: consumeQueue,
			NoAck: consumeNoAck,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to consume: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("consuming from %q as %q, press ctrl-c to stop\n", consumeQueue, tag)

		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					fmt.Println("consumer channel closed")
					return
				}
				fmt.Printf("delivery tag=%d routing-key=%q body=%q\n", d.DeliveryTag, d.RoutingKey, d.Body)
				if !consumeNoAck {
					if err := ch.BasicAck(d.DeliveryTag, false); err != nil {
						fmt.Fprintf(os.Stderr, "failed to ack delivery %d: %v\n", d.DeliveryTag, err)
					}
				}
			case <-ctx.Done():
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), rpcTimeout)
				if err := ch.BasicCancel(shutdownCtx, tag, false); err != nil {
					fmt.Fprintf(os.Stderr, "failed to cancel consumer: %v\n", err)
				}
				shutdownCancel()
				return
			}
		}
	},
}

var (
	consumeQueue string
	consumeNoAck bool
)

func init() {
	consumeCmd.Flags().StringVar(&consumeQueue, "queue", "", "Queue to consume from")
	consumeCmd.Flags().BoolVar(&consumeNoAck, "no-ack", false, "Consume without manual acknowledgement")
	rootCmd.AddCommand(consumeCmd)
}
