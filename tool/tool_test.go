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

package tool

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
	"github.com/hauto/ruled/rule"
	"github.com/hauto/ruled/scene"
)

func newTestTools() (*Tools, *hub.Fake) {
	f := hub.NewFake()
	light := device.Device{ID: 2, Label: "Light", Capabilities: []device.Capability{device.Switch}}
	light.Finalize()
	f.AddDevice(light)
	f.SetAttribute(2, "switch", device.NewString("off"))

	engine := procmgr.New(f, nil)
	scenes := scene.NewManager(engine, f, &persist.Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/scenes.json"}, nil)
	rules := rule.NewManager(engine, f, scenes, &persist.Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/rules.json"}, nil)
	return New(rules, scenes), f
}

func TestInstallAndDescribeRule(t *testing.T) {
	tools, f := newTestTools()
	defer tools.Rules.Engine.Close()
	_ = f

	trigger := condition.Spec{Kind: condition.KindDevice, DeviceID: 2, Attribute: "switch", Operator: string(condition.OpEqual), Value: device.NewString("on")}
	r := rule.Rule{
		Name:    "desc-test",
		Trigger: trigger,
		Actions: []rule.ActionSpec{{Kind: rule.KindDeviceControl, DeviceID: 2, Command: "off"}},
	}
	if err := tools.InstallRule(r); err != nil {
		t.Fatalf("InstallRule: %v", err)
	}

	desc, ok := tools.DescribeRule("desc-test")
	if !ok {
		t.Fatal("expected DescribeRule to find the installed rule")
	}
	if !strings.Contains(desc, "desc-test") {
		t.Fatalf("expected the rendered description to mention the rule name, got %s", desc)
	}

	if _, ok := tools.DescribeRule("missing"); ok {
		t.Fatal("expected DescribeRule to report not-found for an unknown rule")
	}
}

func TestListScenesReflectsCreatedScenes(t *testing.T) {
	tools, f := newTestTools()
	defer tools.Rules.Engine.Close()
	_ = f

	check := condition.Spec{Kind: condition.KindDevice, DeviceID: 2, Attribute: "switch", Operator: string(condition.OpEqual), Value: device.NewString("on")}
	sc := scene.Scene{
		Name:     "evening",
		Settings: []scene.Setting{{DeviceID: 2, Command: "on", Check: check}},
	}
	if err := tools.CreateScene(sc); err != nil {
		t.Fatalf("CreateScene: %v", err)
	}

	all := tools.ListScenes(nil)
	if len(all) != 1 || all[0].Scene.Name != "evening" {
		t.Fatalf("expected one scene named evening, got %+v", all)
	}

	if err := tools.DeleteScene("evening"); err != nil {
		t.Fatalf("DeleteScene: %v", err)
	}
	if len(tools.ListScenes(nil)) != 0 {
		t.Fatal("expected scene to be gone after delete")
	}
}
