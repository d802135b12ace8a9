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

	amqp091 "github.com/rabbitgo/amqp091"
)

var declareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Declare a queue and optionally bind it to an exchange",
	Example: "# amqpctl declare --queue jobs --exchange events --routing-key jobs.created",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), declareTimeout)
		defer cancel()

		conn, err := dial(ctx, "declare")
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

		info, err := ch.QueueDeclare(ctx, amqp091.QueueDeclareArgs{
			Queue:      declareQueue,
			Durable:    declareDurable,
			AutoDelete: declareAutoDelete,
			Exclusive:  declareExclusive,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to declare queue: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("queue %q declared (messages=%d consumers=%d)\n", info.Queue, info.MessageCount, info.ConsumerCount)

		if declareExchange != "" {
			if err := ch.ExchangeDeclare(ctx, amqp091.ExchangeDeclareArgs{
				Exchange: declareExchange,
				Type:     declareExchangeType,
				Durable:  declareDurable,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "failed to declare exchange: %v\n", err)
				os.Exit(1)
			}
			if err := ch.QueueBind(ctx, info.Queue, declareExchange, declareRoutingKey, false, nil); err != nil {
				fmt.Fprintf(os.Stderr, "failed to bind queue: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("bound %q to exchange %q with routing key %q\n", info.Queue, declareExchange, declareRoutingKey)
		}
	},
}

var (
	declareQueue        string
	declareExchange     string
	declareExchangeType string
	declareRoutingKey   string
	declareDurable      bool
	declareAutoDelete   bool
	declareExclusive    bool
	declareTimeout      = rpcTimeout
)

func init() {
	declareCmd.Flags().StringVar(&declareQueue, "queue", "", "Queue name (empty lets the broker generate one)")
	declareCmd.Flags().StringVar(&declareExchange, "exchange", "", "Exchange to bind the queue to (optional)")
	declareCmd.Flags().StringVar(&declareExchangeType, "exchange-type", "direct", "Exchange type (direct, fanout, topic, headers)")
	declareCmd.Flags().StringVar(&declareRoutingKey, "routing-key", "", "Routing key used for the binding")
	declareCmd.Flags().BoolVar(&declareDurable, "durable", true, "Declare the queue/exchange as durable")
	declareCmd.Flags().BoolVar(&declareAutoDelete, "auto-delete", false, "Auto-delete the queue once its last consumer cancels")
	declareCmd.Flags().BoolVar(&declareExclusive, "exclusive", false, "Declare the queue as exclusive to this connection")
	rootCmd.AddCommand(declareCmd)
}
