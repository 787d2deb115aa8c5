// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package config holds the process's startup configuration, parsed from
// flags and environment variables with go-arg using an
// `arg:"--flag,env:VAR"` struct-tag style.
package config

import (
	"fmt"

	"github.com/alexflint/go-arg"
)

// Config is the full set of values this process needs at startup. Fields
// with no default and no `required` tag are optional passthrough values the
// core never inspects itself.
type Config struct {
	HubAddress     string `arg:"--hub-address,env:RULED_HUB_ADDRESS,required" help:"base URL of the device hub"`
	HubAppID       string `arg:"--hub-app-id,env:RULED_HUB_APP_ID" help:"hub application id"`
	HubAccessToken string `arg:"--hub-access-token,env:RULED_HUB_ACCESS_TOKEN,required" help:"hub API access token"`

	LLMAPIKey string `arg:"--llm-api-key,env:RULED_LLM_API_KEY" help:"opaque passthrough for the assistant's LLM credential"`
	LLMModel  string `arg:"--llm-model,env:RULED_LLM_MODEL" help:"opaque passthrough for the assistant's LLM model name"`

	HomeLatitude  float64  `arg:"--home-latitude,env:RULED_HOME_LATITUDE" help:"home location latitude, recorded for future sunrise/sunset conditions"`
	HomeLongitude float64  `arg:"--home-longitude,env:RULED_HOME_LONGITUDE" help:"home location longitude, recorded for future sunrise/sunset conditions"`
	HomeRooms     []string `arg:"--home-room,env:RULED_HOME_ROOMS" help:"room names making up the home layout"`

	RulesPath  string `arg:"--rules-path,env:RULED_RULES_PATH" default:"/etc/ruled/rules.json" help:"path to the persisted rules document"`
	ScenesPath string `arg:"--scenes-path,env:RULED_SCENES_PATH" default:"/etc/ruled/scenes.json" help:"path to the persisted scenes document"`

	ListenAddress string `arg:"--listen-address,env:RULED_LISTEN_ADDRESS" default:":8080" help:"HTTP listen address"`
}

// Parse parses args (typically os.Args[1:]) into a Config, returning an
// error with a usage-style message on validation failure, per spec: missing
// required values abort startup with a diagnostic.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	parser, err := arg.NewParser(arg.Config{}, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: building parser: %w", err)
	}
	if err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
