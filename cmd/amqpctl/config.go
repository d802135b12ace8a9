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
	"fmt"

	"github.com/rabbitgo/amqp091/confengine"
)

// fileConfig is the subset of settings amqpctl.yaml may override;
// anything left zero falls back to the --broker/--log-level/--log-console
// flag defaults.
type fileConfig struct {
	Broker     string `config:"broker"`
	LogLevel   string `config:"logLevel"`
	LogConsole bool   `config:"logConsole"`
}

var configPath string

// loadFileConfig applies amqpctl.yaml on top of whatever flags were
// already parsed: flags set the baseline, the file only overrides
// fields it actually sets.
func loadFileConfig() error {
	if configPath == "" {
		return nil
	}

	cfg, err := confengine.LoadConfigPath(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	var fc fileConfig
	if err := cfg.Unpack(&fc); err != nil {
		return fmt.Errorf("unpack config %s: %w", configPath, err)
	}

	if fc.Broker != "" {
		brokerURL = fc.Broker
	}
	if fc.LogLevel != "" {
		logLevel = fc.LogLevel
	}
	if cfg.Has("logConsole") {
		logConsole = fc.LogConsole
	}
	return nil
}
