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

package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/hauto/ruled/device"
)

// Fake is an in-memory Adapter used by tests throughout this module. It
// tracks a device catalog and attribute values entirely in memory, and lets
// tests drive events directly via Emit instead of going over HTTP.
type Fake struct {
	mu         sync.Mutex
	devices    map[int]device.Device
	attributes map[int]map[string]device.Value
	callbacks  map[int]EventCallback
	commands   []FakeCommand
	failNext   map[string]error
}

// FakeCommand records one SendCommand invocation for assertions in tests.
type FakeCommand struct {
	DeviceID  int
	Command   string
	Arguments map[string]device.Value
}

// NewFake builds an empty Fake adapter.
func NewFake() *Fake {
	return &Fake{
		devices:    map[int]device.Device{},
		attributes: map[int]map[string]device.Value{},
		callbacks:  map[int]EventCallback{},
		failNext:   map[string]error{},
	}
}

// AddDevice registers a device and gives it an empty attribute cache;
// attributes that have not been set read back as Null.
func (f *Fake) AddDevice(d device.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[d.ID] = d
	if _, ok := f.attributes[d.ID]; !ok {
		f.attributes[d.ID] = map[string]device.Value{}
	}
}

// SetAttribute seeds or overwrites a cached attribute value without
// generating an event. Use Emit to simulate a hub-reported change.
func (f *Fake) SetAttribute(deviceID int, attribute string, v device.Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.attributes[deviceID]; !ok {
		f.attributes[deviceID] = map[string]device.Value{}
	}
	f.attributes[deviceID][attribute] = v
}

// Emit simulates a hub-reported attribute change: it updates the cache and,
// if a callback is subscribed for the device, invokes it synchronously.
func (f *Fake) Emit(deviceID int, attribute string, v device.Value) {
	f.mu.Lock()
	if _, ok := f.attributes[deviceID]; !ok {
		f.attributes[deviceID] = map[string]device.Value{}
	}
	f.attributes[deviceID][attribute] = v
	cb, ok := f.callbacks[deviceID]
	f.mu.Unlock()

	if ok {
		cb(Event{DeviceID: deviceID, Attribute: attribute, Value: v})
	}
}

// FailCommandOnce arranges for the next SendCommand call matching
// deviceID/command to return err instead of succeeding.
func (f *Fake) FailCommandOnce(deviceID int, command string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext[fmt.Sprintf("%d/%s", deviceID, command)] = err
}

// Commands returns every SendCommand call recorded so far, in order.
func (f *Fake) Commands() []FakeCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCommand, len(f.commands))
	copy(out, f.commands)
	return out
}

// LoadDevices implements Adapter.
func (f *Fake) LoadDevices(ctx context.Context) ([]device.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]device.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	return out, nil
}

// SendCommand implements Adapter.
func (f *Fake) SendCommand(ctx context.Context, deviceID int, command string, arguments map[string]device.Value) error {
	f.mu.Lock()
	key := fmt.Sprintf("%d/%s", deviceID, command)
	if err, ok := f.failNext[key]; ok {
		delete(f.failNext, key)
		f.mu.Unlock()
		return err
	}
	f.commands = append(f.commands, FakeCommand{DeviceID: deviceID, Command: command, Arguments: arguments})
	f.mu.Unlock()
	return nil
}

// GetAttribute implements Adapter.
func (f *Fake) GetAttribute(ctx context.Context, deviceID int, attribute string) (device.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	attrs, ok := f.attributes[deviceID]
	if !ok {
		return device.Null, fmt.Errorf("hub: unknown device %d", deviceID)
	}
	v, ok := attrs[attribute]
	if !ok {
		return device.Null, nil
	}
	return v, nil
}

// Subscribe implements Adapter.
func (f *Fake) Subscribe(deviceID int, attributes []string, cb EventCallback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks[deviceID] = cb
}

// Unsubscribe implements Adapter.
func (f *Fake) Unsubscribe(deviceID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.callbacks, deviceID)
}
