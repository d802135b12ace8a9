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

package rescue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabbitgo/amqp091/amqperr"
)

func TestCallRecoversPanic(t *testing.T) {
	err := Call(func() {
		panic("sink exploded")
	})

	require.Error(t, err)
	var cb *amqperr.Callback
	require.ErrorAs(t, err, &cb)
	assert.Equal(t, "sink exploded", cb.Inner)
}

func TestCallPassesThroughOnNoPanic(t *testing.T) {
	ran := false
	err := Call(func() {
		ran = true
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestCallRecoversNonStringPanic(t *testing.T) {
	err := Call(func() {
		panic(42)
	})

	require.Error(t, err)
	var cb *amqperr.Callback
	require.ErrorAs(t, err, &cb)
	assert.Equal(t, 42, cb.Inner)
}
