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

package rule

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
	"github.com/hauto/ruled/scene"
)

// installedRule is the live bookkeeping behind one Manager.InstallRule call.
type installedRule struct {
	rule      Rule
	trigger   condition.Condition
	triggerID string
}

// Manager owns every installed rule, compiling their declarative triggers
// and predicates into procmgr conditions and interpreting their action
// chains when triggers fire.
type Manager struct {
	Engine *procmgr.Engine
	Hub    hub.Adapter
	Scenes *scene.Manager
	Store  *persist.Store
	Logf   func(format string, v ...interface{})

	mu        sync.Mutex
	installed map[string]*installedRule
}

// NewManager builds a Manager. Logf defaults to a no-op if nil.
func NewManager(engine *procmgr.Engine, adapter hub.Adapter, scenes *scene.Manager, store *persist.Store, logf func(string, ...interface{})) *Manager {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Manager{
		Engine:    engine,
		Hub:       adapter,
		Scenes:    scenes,
		Store:     store,
		Logf:      logf,
		installed: map[string]*installedRule{},
	}
}

// InstallRule compiles rule's trigger and installs it on the engine. The
// rule's name must be unique among currently installed rules.
func (obj *Manager) InstallRule(rule Rule) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	if err := obj.installLocked(rule); err != nil {
		return err
	}
	if err := obj.persistLocked(); err != nil {
		obj.Logf("rule: persisting after install of %s: %v", rule.Name, err)
	}
	return nil
}

func (obj *Manager) installLocked(rule Rule) error {
	if _, exists := obj.installed[rule.Name]; exists {
		return fmt.Errorf("rule: %s is already installed", rule.Name)
	}

	trigger, err := condition.Compile(rule.Trigger)
	if err != nil {
		return fmt.Errorf("rule: compiling trigger for %s: %w", rule.Name, err)
	}

	ir := &installedRule{rule: rule, trigger: trigger}
	obj.installed[rule.Name] = ir

	id, err := obj.Engine.AddCondition(&procmgr.Record{
		Condition: trigger,
		Action:    obj.onRuleTriggered(rule.Name),
	})
	if err != nil {
		delete(obj.installed, rule.Name)
		return fmt.Errorf("rule: installing trigger for %s: %w", rule.Name, err)
	}
	ir.triggerID = id
	return nil
}

// UninstallRule removes a rule's trigger and forgets it. It does not
// interrupt an in-flight action chain the rule may currently be suspended
// in.
func (obj *Manager) UninstallRule(name string) error {
	obj.mu.Lock()
	defer obj.mu.Unlock()

	ir, ok := obj.installed[name]
	if !ok {
		return fmt.Errorf("rule: %s is not installed", name)
	}
	delete(obj.installed, name)

	// The trigger may already be removed (the rule is mid-action-chain,
	// having unarmed itself until Exit reinstalls it); that's not an error.
	_ = obj.Engine.RemoveCondition(ir.triggerID)
	if err := obj.persistLocked(); err != nil {
		obj.Logf("rule: persisting after uninstall of %s: %v", name, err)
	}
	return nil
}

// ListRules returns every currently installed rule, in no particular order.
func (obj *Manager) ListRules() []Rule {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	out := make([]Rule, 0, len(obj.installed))
	for _, ir := range obj.installed {
		out = append(out, ir.rule)
	}
	return out
}

// GetRule returns the named rule's declarative form.
func (obj *Manager) GetRule(name string) (Rule, bool) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	ir, ok := obj.installed[name]
	if !ok {
		return Rule{}, false
	}
	return ir.rule, true
}

// GetCompiledTrigger returns the live Condition tree backing name's trigger,
// for tool.DescribeRule's diagnostic dump.
func (obj *Manager) GetCompiledTrigger(name string) (condition.Condition, bool) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	ir, ok := obj.installed[name]
	if !ok {
		return nil, false
	}
	return ir.trigger, true
}

// ExecuteActions runs actions once, ad hoc, outside of any rule. It borrows
// a ConditionManager by installing a synthetic always-true condition long
// enough to get onto the engine's loop goroutine, then releases it
// immediately; the chain itself may still suspend independently on its own
// Until/Wait conditions.
func (obj *Manager) ExecuteActions(actions []ActionSpec) error {
	var runErr error
	done := make(chan struct{})

	id, err := obj.Engine.AddCondition(&procmgr.Record{
		Condition:     condition.NewTrue(),
		TriggerAlways: true,
		Action: func(cm *procmgr.ConditionManager) {
			runErr = obj.invoke(cm, actions, Rule{})
			close(done)
		},
	})
	if err != nil {
		return fmt.Errorf("rule: executing actions: %w", err)
	}
	<-done
	_ = obj.Engine.RemoveCondition(id)
	return runErr
}

// persistLocked writes the current rule set to disk. Caller must hold mu.
func (obj *Manager) persistLocked() error {
	if obj.Store == nil {
		return nil
	}
	rules := make([]Rule, 0, len(obj.installed))
	for _, ir := range obj.installed {
		rules = append(rules, ir.rule)
	}
	return obj.Store.Save(rules)
}

// ReloadFromDisk loads persisted rules and installs each one, aggregating
// any per-entry failures rather than aborting on the first bad rule.
func (obj *Manager) ReloadFromDisk() error {
	if obj.Store == nil {
		return nil
	}
	var rules []Rule
	if err := obj.Store.Load(&rules); err != nil {
		return fmt.Errorf("rule: loading persisted rules: %w", err)
	}

	obj.mu.Lock()
	defer obj.mu.Unlock()

	var result *multierror.Error
	for _, r := range rules {
		if err := obj.installLocked(r); err != nil {
			result = multierror.Append(result, fmt.Errorf("rule: reloading %s: %w", r.Name, err))
		}
	}
	return result.ErrorOrNil()
}
