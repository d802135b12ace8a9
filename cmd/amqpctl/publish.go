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

var publishCmd = &cobra.Command{
	Use:     "publish",
	Short:   "Publish a single message to an exchange",
	Example: "# amqpctl publish --exchange events --routing-key jobs.created --body '{}'",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()

		conn, err := dial(ctx, "publish")
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

		deliveryMode := uint8(1)
		if publishPersistent {
			deliveryMode = 2
		}
		props := amqp091.Properties{
			ContentType:  publishContentType,
			DeliveryMode: deliveryMode,
		}
		if err := ch.BasicPublish(ctx, publishExchange, publishRoutingKey, publishMandatory, false, props, []byte(publishBody)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to publish: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("published %d bytes to exchange %q (routing key %q)\n", len(publishBody), publishExchange, publishRoutingKey)
	},
}

var (
	publishExchange    string
	publishRoutingKey  string
	publishBody        string
	publishContentType string
	publishPersistent  bool
	publishMandatory   bool
)

func init() {
	publishCmd.Flags().StringVar(&publishExchange, "exchange", "", "Exchange name (empty publishes to the default exchange)")
	publishCmd.Flags().StringVar(&publishRoutingKey, "routing-key", "", "Routing key")
	publishCmd.Flags().StringVar(&publishBody, "body", "", "Message body")
	publishCmd.Flags().StringVar(&publishContentType, "content-type", "application/octet-stream", "Message content type")
	publishCmd.Flags().BoolVar(&publishPersistent, "persistent", false, "Mark the message as persistent (delivery-mode 2)")
	publishCmd.Flags().BoolVar(&publishMandatory, "mandatory", false, "Ask the broker to return the message instead of dropping it if unroutable")
	rootCmd.AddCommand(publishCmd)
}
