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

package methodcat

import (
	"bytes"
	"io"
)

// ConfirmSelect is confirm.select (85,10), the RabbitMQ publisher
// confirms extension: no-wait.
type ConfirmSelect struct {
	NoWait bool
}

func (m ConfirmSelect) Encode(w io.Writer) error { return writeOctet(w, packBits(m.NoWait)) }

func DecodeConfirmSelect(r *bytes.Reader) (ConfirmSelect, error) {
	flags, err := readOctet(r)
	if err != nil {
		return ConfirmSelect{}, err
	}
	return ConfirmSelect{NoWait: unpackBit(flags, 0)}, nil
}

// ConfirmSelectOk is confirm.select-ok (85,11): no arguments.
type ConfirmSelectOk struct{}

func (ConfirmSelectOk) Encode(io.Writer) error { return nil }

func DecodeConfirmSelectOk(*bytes.Reader) (ConfirmSelectOk, error) { return ConfirmSelectOk{}, nil }
