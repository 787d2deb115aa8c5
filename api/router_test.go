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

package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
	"github.com/hauto/ruled/rule"
	"github.com/hauto/ruled/scene"
	"github.com/hauto/ruled/tool"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() (*Server, *hub.Fake) {
	f := hub.NewFake()
	light := device.Device{ID: 2, Label: "Light", Capabilities: []device.Capability{device.Switch}}
	light.Finalize()
	f.AddDevice(light)
	f.SetAttribute(2, "switch", device.NewString("off"))

	engine := procmgr.New(f, nil)
	rules := rule.NewManager(engine, f, nil, &persist.Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/rules.json"}, nil)
	scenes := scene.NewManager(engine, f, &persist.Store{Fs: afero.NewMemMapFs(), Path: "/etc/ruled/scenes.json"}, nil)
	tools := tool.New(rules, scenes)

	client := &hub.RESTClient{BaseURL: "http://hub.invalid"}
	return New(client, tools, nil), f
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestInstallAndListRule(t *testing.T) {
	srv, _ := newTestServer()

	trigger := condition.Spec{Kind: condition.KindDevice, DeviceID: 2, Attribute: "switch", Operator: string(condition.OpEqual), Value: device.NewString("on")}
	r := rule.Rule{
		Name:    "test-rule",
		Trigger: trigger,
		Actions: []rule.ActionSpec{{Kind: rule.KindDeviceControl, DeviceID: 2, Command: "off"}},
	}
	body, _ := json.Marshal(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/rules", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("GET", "/rules", nil)
	srv.Handler().ServeHTTP(w2, req2)
	if w2.Code != 200 {
		t.Fatalf("expected 200, got %d", w2.Code)
	}

	var rules []rule.Rule
	if err := json.Unmarshal(w2.Body.Bytes(), &rules); err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].Name != "test-rule" {
		t.Fatalf("expected the installed rule back, got %+v", rules)
	}
}

func TestCreateAndListScenes(t *testing.T) {
	srv, _ := newTestServer()

	check := condition.Spec{Kind: condition.KindDevice, DeviceID: 2, Attribute: "switch", Operator: string(condition.OpEqual), Value: device.NewString("on")}
	sc := scene.Scene{
		Name:     "test-scene",
		Settings: []scene.Setting{{DeviceID: 2, Command: "on", Check: check}},
	}
	body, _ := json.Marshal(sc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/scenes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("GET", "/scenes", nil)
	srv.Handler().ServeHTTP(w2, req2)
	if w2.Code != 200 {
		t.Fatalf("expected 200, got %d", w2.Code)
	}
}
