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

package amqp091

import (
	"github.com/mitchellh/mapstructure"

	"github.com/rabbitgo/amqp091/amqperr"
)

// ServerProperties is connection.start's server-properties field table
// decoded into a typed struct, the same way the caller's own
// server-properties reply appears on the broker's management UI.
type ServerProperties struct {
	Product     string `mapstructure:"product"`
	Version     string `mapstructure:"version"`
	Platform    string `mapstructure:"platform"`
	Cluster     string `mapstructure:"cluster_name"`
	Copyright   string `mapstructure:"copyright"`
	Information string `mapstructure:"information"`
}

func decodeServerProperties(t Table) (ServerProperties, error) {
	var sp ServerProperties
	if err := mapstructure.Decode(map[string]any(t), &sp); err != nil {
		return ServerProperties{}, amqperr.Wrap(err, "decode server-properties")
	}
	return sp, nil
}
