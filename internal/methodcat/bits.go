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

// packBits folds up to 8 booleans into a single octet, low bit first,
// the layout every AMQP method with consecutive bit arguments uses.
func packBits(bits ...bool) byte {
	var b byte
	for i, v := range bits {
		if v {
			b |= 1 << uint(i)
		}
	}
	return b
}

// unpackBit reads bit i (0-indexed, low bit first) out of b.
func unpackBit(b byte, i int) bool {
	return b&(1<<uint(i)) != 0
}
