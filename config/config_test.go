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

package config

import "testing"

func TestParseRequiresHubCredentials(t *testing.T) {
	if _, err := Parse([]string{}); err == nil {
		t.Fatal("expected an error when required hub flags are missing")
	}
}

func TestParseFillsDefaults(t *testing.T) {
	cfg, err := Parse([]string{
		"--hub-address", "https://hub.example.com",
		"--hub-access-token", "secret",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RulesPath != "/etc/ruled/rules.json" {
		t.Fatalf("expected default rules path, got %s", cfg.RulesPath)
	}
	if cfg.ListenAddress != ":8080" {
		t.Fatalf("expected default listen address, got %s", cfg.ListenAddress)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]string{
		"--hub-address", "https://hub.example.com",
		"--hub-access-token", "secret",
		"--listen-address", ":9090",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddress != ":9090" {
		t.Fatalf("expected overridden listen address, got %s", cfg.ListenAddress)
	}
}
