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
	"context"
	"time"

	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/procmgr"
)

// onRuleTriggered builds the Action callback installed on name's trigger
// condition. It unarms the trigger before running the action chain (with a
// synthetic exit step appended), so the rule cannot retrigger while its own
// chain is still running, and reinstalls the same trigger condition once the
// chain completes.
func (obj *Manager) onRuleTriggered(name string) procmgr.ActionFn {
	return func(cm *procmgr.ConditionManager) {
		obj.mu.Lock()
		ir, ok := obj.installed[name]
		obj.mu.Unlock()
		if !ok {
			return
		}

		cm.RemoveCondition(ir.triggerID)
		actions := append(append([]ActionSpec{}, ir.rule.Actions...), ActionSpec{Kind: KindExit})
		obj.invokeWithRearm(cm, actions, name)
	}
}

// invokeWithRearm runs actions and, once the chain has fully completed
// (including any Until/Wait suspension), reinstalls the trigger condition so
// the rule becomes triggerable again.
func (obj *Manager) invokeWithRearm(cm *procmgr.ConditionManager, actions []ActionSpec, name string) {
	if err := obj.invoke(cm, actions, Rule{Name: name}); err != nil {
		obj.Logf("rule: %s: %v", name, err)
	}
}

// reinstallTrigger is invoked by the synthetic exit step appended to every
// triggered rule's action chain; it reinstalls name's trigger condition so
// the rule can fire again.
func (obj *Manager) reinstallTrigger(cm *procmgr.ConditionManager, name string) {
	obj.mu.Lock()
	ir, ok := obj.installed[name]
	obj.mu.Unlock()
	if !ok {
		return
	}

	id, err := cm.AddCondition(&procmgr.Record{
		Condition: ir.trigger,
		Action:    obj.onRuleTriggered(name),
	})
	if err != nil {
		obj.Logf("rule: reinstalling trigger for %s: %v", name, err)
		return
	}

	obj.mu.Lock()
	if ir, ok := obj.installed[name]; ok {
		ir.triggerID = id
	}
	obj.mu.Unlock()
}

// invoke runs the head of actions synchronously and then recurses into the
// tail, so an action that needs to suspend (Until, Wait) can simply not
// recurse itself — it installs a condition whose own Action/TimeoutAction
// closures resume the interpreter later, on the engine's loop goroutine,
// instead of blocking this call.
func (obj *Manager) invoke(cm *procmgr.ConditionManager, actions []ActionSpec, rule Rule) error {
	if len(actions) == 0 {
		return nil
	}
	head, rest := actions[0], actions[1:]

	switch head.Kind {
	case KindDeviceControl:
		if err := obj.Hub.SendCommand(context.Background(), head.DeviceID, head.Command, head.Arguments); err != nil {
			obj.Logf("rule: device_control on %d failed: %v", head.DeviceID, err)
		}
		return obj.invoke(cm, rest, rule)

	case KindScene:
		if obj.Scenes != nil {
			if err := obj.Scenes.SetScene(head.SceneName); err != nil {
				obj.Logf("rule: scene %s failed: %v", head.SceneName, err)
			}
		}
		return obj.invoke(cm, rest, rule)

	case KindIfThenElse:
		pred, err := obj.compileOrTrue(head.Predicate)
		if err != nil {
			return err
		}
		predID, err := cm.AddCondition(&procmgr.Record{Condition: pred})
		if err != nil {
			return err
		}
		truth, _ := cm.CheckState(predID)
		cm.RemoveCondition(predID)
		var branch []ActionSpec
		if truth {
			branch = head.ThenActions
		} else {
			branch = head.ElseActions
		}
		return obj.invoke(cm, append(append([]ActionSpec{}, branch...), rest...), rule)

	case KindUntil:
		return obj.invokeUntil(cm, head, rest, rule)

	case KindWait:
		return obj.invokeWait(cm, head, rest, rule)

	case KindExit:
		obj.reinstallTrigger(cm, rule.Name)
		return obj.invoke(cm, rest, rule)

	default:
		return nil
	}
}

// invokeUntil installs head.Condition and suspends the chain: UntilActions
// runs (followed by rest) if the condition becomes true, TimeoutActions runs
// (also followed by rest) if Timeout elapses first. Either branch removes
// the installed condition before continuing so it cannot fire twice.
func (obj *Manager) invokeUntil(cm *procmgr.ConditionManager, head ActionSpec, rest []ActionSpec, rule Rule) error {
	cond, err := obj.compileOrTrue(head.Condition)
	if err != nil {
		return err
	}

	rec := &procmgr.Record{Condition: cond}
	if head.Timeout != nil {
		rec.Timeout = secondsToDuration(*head.Timeout)
	}

	var id string
	rec.Action = func(inner *procmgr.ConditionManager) {
		inner.RemoveCondition(id)
		obj.invoke(inner, append(append([]ActionSpec{}, head.UntilActions...), rest...), rule)
	}
	rec.TimeoutAction = func(inner *procmgr.ConditionManager) {
		inner.RemoveCondition(id)
		obj.invoke(inner, append(append([]ActionSpec{}, head.TimeoutActions...), rest...), rule)
	}

	id, err = cm.AddCondition(rec)
	return err
}

// invokeWait suspends the chain until either head.Condition becomes true or
// head.Timeout elapses, whichever comes first, then continues with rest. If
// EndOnTimeout is set and the timeout branch fires, the chain ends there
// instead of continuing into rest: it runs a synthetic exit step so a
// triggered rule's trigger still gets reinstalled even though rest is
// skipped. A pure delay (no Condition) compiles to an always-true
// condition, which never transitions and so never fires early: resumption
// then relies entirely on the timeout, a direct consequence of
// AddCondition's rule that installing an already-true condition without
// trigger_always does not fire immediately.
func (obj *Manager) invokeWait(cm *procmgr.ConditionManager, head ActionSpec, rest []ActionSpec, rule Rule) error {
	cond, err := obj.compileOrTrue(head.Condition)
	if err != nil {
		return err
	}

	rec := &procmgr.Record{Condition: cond}
	if head.Timeout != nil {
		rec.Timeout = secondsToDuration(*head.Timeout)
	}

	var id string
	rec.Action = func(inner *procmgr.ConditionManager) {
		inner.RemoveCondition(id)
		obj.invoke(inner, rest, rule)
	}
	rec.TimeoutAction = func(inner *procmgr.ConditionManager) {
		inner.RemoveCondition(id)
		if head.EndOnTimeout {
			obj.invoke(inner, []ActionSpec{{Kind: KindExit}}, rule)
			return
		}
		obj.invoke(inner, rest, rule)
	}

	id, err = cm.AddCondition(rec)
	return err
}

// compileOrTrue compiles spec, or returns an always-true condition if spec
// is nil.
func (obj *Manager) compileOrTrue(spec *condition.Spec) (condition.Condition, error) {
	if spec == nil {
		return condition.NewTrue(), nil
	}
	return condition.Compile(*spec)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
