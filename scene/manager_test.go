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

package scene

import (
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
)

func newTestManager() (*Manager, *hub.Fake) {
	f := hub.NewFake()
	light := device.Device{ID: 2, Label: "Light", Capabilities: []device.Capability{device.Switch}}
	light.Finalize()
	f.AddDevice(light)
	f.SetAttribute(2, "switch", device.NewString("off"))

	engine := procmgr.New(f, nil)
	store := &persist.Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/scenes.json"}
	return NewManager(engine, f, store, nil), f
}

func lightOnCheck() condition.Spec {
	return condition.Spec{Kind: condition.KindDevice, DeviceID: 2, Attribute: "switch", Operator: string(condition.OpEqual), Value: device.NewString("on")}
}

func TestSceneTracksSetAndUnset(t *testing.T) {
	m, f := newTestManager()
	defer m.Engine.Close()

	sc := Scene{
		Name: "movie-night",
		Settings: []Setting{
			{DeviceID: 2, Command: "on", Check: lightOnCheck()},
		},
	}
	if err := m.CreateScene(sc); err != nil {
		t.Fatal(err)
	}

	summaries := m.GetAllScenes(nil)
	if len(summaries) != 1 || summaries[0].IsSet {
		t.Fatalf("expected scene to start unset, got %+v", summaries)
	}

	f.Emit(2, "switch", device.NewString("on"))
	time.Sleep(20 * time.Millisecond)

	summaries = m.GetAllScenes(nil)
	if len(summaries) != 1 || !summaries[0].IsSet {
		t.Fatalf("expected scene to be set after matching device event, got %+v", summaries)
	}

	f.Emit(2, "switch", device.NewString("off"))
	time.Sleep(20 * time.Millisecond)

	summaries = m.GetAllScenes(nil)
	if len(summaries) != 1 || summaries[0].IsSet {
		t.Fatalf("expected scene to be unset again, got %+v", summaries)
	}
}

func TestSetSceneSendsCommands(t *testing.T) {
	m, f := newTestManager()
	defer m.Engine.Close()

	sc := Scene{
		Name:     "movie-night",
		Settings: []Setting{{DeviceID: 2, Command: "on", Check: lightOnCheck()}},
	}
	m.CreateScene(sc)

	if err := m.SetScene("movie-night"); err != nil {
		t.Fatal(err)
	}

	cmds := f.Commands()
	if len(cmds) != 1 || cmds[0].Command != "on" || cmds[0].DeviceID != 2 {
		t.Fatalf("expected SetScene to send the setting's command, got %+v", cmds)
	}
}

func TestGetAllScenesFilter(t *testing.T) {
	m, f := newTestManager()
	defer m.Engine.Close()

	m.CreateScene(Scene{Name: "a", Settings: []Setting{{DeviceID: 2, Command: "on", Check: lightOnCheck()}}})
	f.Emit(2, "switch", device.NewString("on"))
	time.Sleep(20 * time.Millisecond)

	setTrue := true
	set := m.GetAllScenes(&setTrue)
	if len(set) != 1 {
		t.Fatalf("expected one set scene, got %+v", set)
	}

	setFalse := false
	unset := m.GetAllScenes(&setFalse)
	if len(unset) != 0 {
		t.Fatalf("expected no unset scenes, got %+v", unset)
	}
}

func TestDeleteScene(t *testing.T) {
	m, _ := newTestManager()
	defer m.Engine.Close()

	m.CreateScene(Scene{Name: "a", Settings: []Setting{{DeviceID: 2, Command: "on", Check: lightOnCheck()}}})
	if err := m.DeleteScene("a"); err != nil {
		t.Fatal(err)
	}
	if len(m.GetAllScenes(nil)) != 0 {
		t.Fatal("expected no scenes after delete")
	}
}
