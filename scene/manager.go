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
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
)

// installedScene is the live bookkeeping behind one installed scene: its
// declarative model, whether it is currently believed to be set, and
// whichever of the two complementary triggers is presently armed.
type installedScene struct {
	scene       Scene
	isSet       bool
	setTrigger  condition.Condition
	setID       string // non-empty while the set-detection trigger is armed
	unsetID     string // non-empty while the unset-detection trigger is armed
}

// Manager owns every installed scene and the pair of complementary
// conditions ("is this scene currently applied" / "has it since stopped
// being applied") that detect its state reactively.
type Manager struct {
	Engine *procmgr.Engine
	Hub    hub.Adapter
	Store  *persist.Store
	Logf   func(format string, v ...interface{})

	mu        sync.Mutex
	installed map[string]*installedScene
}

// NewManager builds a Manager. Logf defaults to a no-op if nil.
func NewManager(engine *procmgr.Engine, adapter hub.Adapter, store *persist.Store, logf func(string, ...interface{})) *Manager {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Manager{
		Engine:    engine,
		Hub:       adapter,
		Store:     store,
		Logf:      logf,
		installed: map[string]*installedScene{},
	}
}

// CreateScene compiles scene's per-setting Check predicates into a
// conjunction (the set-detection trigger) and its negation (the
// unset-detection trigger), installs the set trigger, and persists.
func (obj *Manager) CreateScene(sc Scene) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if err := obj.installLocked(sc); err != nil {
		return err
	}
	if err := obj.persistLocked(); err != nil {
		obj.Logf("scene: persisting after create of %s: %v", sc.Name, err)
	}
	return nil
}

func (obj *Manager) installLocked(sc Scene) error {
	if _, exists := obj.installed[sc.Name]; exists {
		return fmt.Errorf("scene: %s is already installed", sc.Name)
	}

	children := make([]condition.Condition, 0, len(sc.Settings))
	for _, s := range sc.Settings {
		c, err := condition.Compile(s.Check)
		if err != nil {
			return fmt.Errorf("scene: compiling check for %s: %w", sc.Name, err)
		}
		children = append(children, c)
	}
	setTrigger, err := condition.NewBoolean(condition.BoolAnd, children...)
	if err != nil {
		return fmt.Errorf("scene: building set-trigger for %s: %w", sc.Name, err)
	}

	is := &installedScene{scene: sc, setTrigger: setTrigger}
	obj.installed[sc.Name] = is

	id, err := obj.Engine.AddCondition(&procmgr.Record{
		Condition:     setTrigger,
		TriggerAlways: true,
		Action:        obj.onSetDetected(sc.Name),
	})
	if err != nil {
		delete(obj.installed, sc.Name)
		return fmt.Errorf("scene: installing set-trigger for %s: %w", sc.Name, err)
	}
	is.setID = id
	return nil
}

// onSetDetected fires when a scene's settings all hold. It marks the scene
// set, removes the set-detection trigger, and installs the complementary
// unset-detection trigger in its place.
func (obj *Manager) onSetDetected(name string) procmgr.ActionFn {
	return func(cm *procmgr.ConditionManager) {
		obj.mu.Lock()
		is, ok := obj.installed[name]
		obj.mu.Unlock()
		if !ok {
			return
		}

		cm.RemoveCondition(is.setID)
		is.isSet = true
		is.setID = ""

		unsetTrigger, err := condition.NewBoolean(condition.BoolNot, is.setTrigger)
		if err != nil {
			obj.Logf("scene: building unset-trigger for %s: %v", name, err)
			return
		}
		id, err := cm.AddCondition(&procmgr.Record{
			Condition: unsetTrigger,
			Action:    obj.onUnsetDetected(name),
		})
		if err != nil {
			obj.Logf("scene: installing unset-trigger for %s: %v", name, err)
			return
		}
		is.unsetID = id
	}
}

// onUnsetDetected is the mirror of onSetDetected: once a setting drifts away
// from the scene's target state, it marks the scene unset and re-arms the
// set-detection trigger.
func (obj *Manager) onUnsetDetected(name string) procmgr.ActionFn {
	return func(cm *procmgr.ConditionManager) {
		obj.mu.Lock()
		is, ok := obj.installed[name]
		obj.mu.Unlock()
		if !ok {
			return
		}

		cm.RemoveCondition(is.unsetID)
		is.isSet = false
		is.unsetID = ""

		id, err := cm.AddCondition(&procmgr.Record{
			Condition:     is.setTrigger,
			TriggerAlways: true,
			Action:        obj.onSetDetected(name),
		})
		if err != nil {
			obj.Logf("scene: re-arming set-trigger for %s: %v", name, err)
			return
		}
		is.setID = id
	}
}

// DeleteScene removes whichever of a scene's two triggers is currently
// armed, forgets it, and persists.
func (obj *Manager) DeleteScene(name string) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()

	is, ok := obj.installed[name]
	if !ok {
		return fmt.Errorf("scene: %s is not installed", name)
	}
	if is.setID != "" {
		obj.Engine.RemoveCondition(is.setID)
	}
	if is.unsetID != "" {
		obj.Engine.RemoveCondition(is.unsetID)
	}
	delete(obj.installed, name)

	if err := obj.persistLocked(); err != nil {
		obj.Logf("scene: persisting after delete of %s: %v", name, err)
	}
	return nil
}

// SetScene sends every setting's command to the hub in order. It does not
// directly flip IsSet; the resulting device events drive the set-detection
// trigger through the normal reactive path.
func (obj *Manager) SetScene(name string) error {
	obj.mu.Lock()
	is, ok := obj.installed[name]
	obj.mu.Unlock()
	if !ok {
		return fmt.Errorf("scene: %s is not installed", name)
	}

	var result *multierror.Error
	for _, s := range is.scene.Settings {
		if err := obj.Hub.SendCommand(context.Background(), s.DeviceID, s.Command, s.Arguments); err != nil {
			result = multierror.Append(result, fmt.Errorf("scene: %s: device %d: %w", name, s.DeviceID, err))
		}
	}
	return result.ErrorOrNil()
}

// Summary is a scene's declarative model plus its current is-set state, as
// returned by GetAllScenes.
type Summary struct {
	Scene Scene
	IsSet bool
}

// GetAllScenes returns every installed scene and its current is-set state.
// If filterSet is non-nil, only scenes whose is-set state matches it are
// returned.
func (obj *Manager) GetAllScenes(filterSet *bool) []Summary {
	obj.mu.Lock()
	defer obj.mu.Unlock()

	out := make([]Summary, 0, len(obj.installed))
	for _, is := range obj.installed {
		if filterSet != nil && is.isSet != *filterSet {
			continue
		}
		out = append(out, Summary{Scene: is.scene, IsSet: is.isSet})
	}
	return out
}

func (obj *Manager) persistLocked() error {
	if obj.Store == nil {
		return nil
	}
	scenes := make([]Scene, 0, len(obj.installed))
	for _, is := range obj.installed {
		scenes = append(scenes, is.scene)
	}
	return obj.Store.Save(scenes)
}

// ReloadFromDisk loads persisted scenes and installs each one, aggregating
// per-entry failures rather than aborting on the first bad scene.
func (obj *Manager) ReloadFromDisk() error {
	if obj.Store == nil {
		return nil
	}
	var scenes []Scene
	if err := obj.Store.Load(&scenes); err != nil {
		return fmt.Errorf("scene: loading persisted scenes: %w", err)
	}

	obj.mu.Lock()
	defer obj.mu.Unlock()

	var result *multierror.Error
	for _, sc := range scenes {
		if err := obj.installLocked(sc); err != nil {
			result = multierror.Append(result, fmt.Errorf("scene: reloading %s: %w", sc.Name, err))
		}
	}
	return result.ErrorOrNil()
}
