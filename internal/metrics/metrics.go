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

// Package metrics holds the library's Prometheus collectors as
// package-level promauto declarations. Every connection/channel
// package calls the narrow setter functions below instead of touching
// prometheus types directly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rabbitgo/amqp091/internal/defaults"
)

var (
	framesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaults.App,
			Name:      "frames_total",
			Help:      "Frames sent or received, by type and direction",
		},
		[]string{"type", "direction"},
	)

	channelDispatcherQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: defaults.App,
			Name:      "channel_dispatcher_queue_depth",
			Help:      "Management command queue depth per channel dispatcher",
		},
		[]string{"channel"},
	)

	rpcDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: defaults.App,
			Name:      "rpc_duration_seconds",
			Help:      "Synchronous RPC round-trip latency by method",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	heartbeatMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: defaults.App,
			Name:      "heartbeat_misses_total",
			Help:      "Connections failed for heartbeat loss (each after MissedHeartbeatsLimit silent intervals)",
		},
	)

	consumerBufferedMessages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: defaults.App,
			Name:      "consumer_buffered_messages",
			Help:      "Messages buffered in a consumer FIFO awaiting sink registration",
		},
		[]string{"consumer_tag"},
	)

	panicTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: defaults.App,
			Name:      "panic_total",
			Help:      "Callback panics recovered by the dispatcher",
		},
	)
)

// ObserveFrame records one frame of typ crossing the wire, either
// "in" or "out".
func ObserveFrame(typ, direction string) {
	framesTotal.WithLabelValues(typ, direction).Inc()
}

// SetDispatcherQueueDepth reports the current management-command
// queue depth for a channel.
func SetDispatcherQueueDepth(channel string, depth int) {
	channelDispatcherQueueDepth.WithLabelValues(channel).Set(float64(depth))
}

// ObserveRPCDuration records how long a synchronous method call took
// to receive its reply.
func ObserveRPCDuration(method string, seconds float64) {
	rpcDuration.WithLabelValues(method).Observe(seconds)
}

// IncHeartbeatMiss records one heartbeat loss: the connection calls it
// once when its deadline watcher gives up, not once per silent
// interval.
func IncHeartbeatMiss() {
	heartbeatMissesTotal.Inc()
}

// SetConsumerBuffered reports how many messages are buffered for a
// consumer tag ahead of sink registration.
func SetConsumerBuffered(consumerTag string, n int) {
	consumerBufferedMessages.WithLabelValues(consumerTag).Set(float64(n))
}

// IncPanic records one recovered callback panic.
func IncPanic() {
	panicTotal.Inc()
}
