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

// Package rescue recovers panics raised out of caller-supplied
// callbacks (channel callbacks and connection callbacks)
// so that one misbehaving callback cannot kill a dispatcher goroutine.
// Callback panics are caught and reported as amqperr.Callback; they do
// not kill the dispatcher.
//
// PanicHandlers/HandleCrash only logged and counted a panic and let
// the goroutine unwind. This package keeps both handlers (log,
// count) but wraps them behind a Call helper that converts the
// recovered value into an amqperr.Callback the dispatcher can report
// through its normal error path instead of losing it to a bare panic.
package rescue

import (
	"runtime"

	"github.com/rabbitgo/amqp091/amqperr"
	"github.com/rabbitgo/amqp091/internal/metrics"
	"github.com/rabbitgo/amqp091/logger"
)

var panicHandlers = []func(any){
	incPanicCounter,
	logPanic,
}

func incPanicCounter(_ any) {
	metrics.IncPanic()
}

func logPanic(r any) {
	const size = 64 << 10
	stacktrace := make([]byte, size)
	stacktrace = stacktrace[:runtime.Stack(stacktrace, false)]
	if _, ok := r.(string); ok {
		logger.Errorf("Observed a callback panic: %s\n%s", r, stacktrace)
	} else {
		logger.Errorf("Observed a callback panic: %#v (%v)\n%s", r, r, stacktrace)
	}
}

// Call invokes fn, recovering any panic it raises and returning it as
// an *amqperr.Callback instead of propagating it. Returns nil if fn
// did not panic.
func Call(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			for _, h := range panicHandlers {
				h(r)
			}
			err = &amqperr.Callback{Inner: r}
		}
	}()
	fn()
	return nil
}
