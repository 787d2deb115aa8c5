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

// Package procmgr is the reactive core: it tracks installed conditions, their
// dependencies on devices and on each other, propagates truth-value changes
// through the dependency graph, arms and disarms debounce/timeout timers, and
// invokes actions. Every mutating operation — installing or removing a
// condition, dispatching a device event, firing a timer — is funneled through
// a single-consumer work queue so that no two of these ever interleave, the
// Go-idiomatic rendering of a lock that would otherwise need to tolerate
// being held across blocking hub I/O.
package procmgr

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hauto/ruled/clock"
	"github.com/hauto/ruled/condition"
	"github.com/hauto/ruled/device"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/timer"
	errwrap "github.com/pkg/errors"
)

const rootSentinel = "__root__"

const (
	durationSuffix = "#duration"
	timeoutSuffix  = "#timeout"
)

// ActionFn is invoked when a condition's action or timeout-action fires. It
// receives a restricted handle back into the engine rather than the engine
// itself, so a callback can only install/remove conditions, not reach into
// unrelated engine state.
type ActionFn func(cm *ConditionManager)

// Record is the declarative envelope an installer hands to AddCondition: the
// condition to track plus the scheduling metadata (duration, timeout,
// trigger_always) and the callbacks to invoke.
type Record struct {
	Condition     condition.Condition
	Duration      time.Duration
	Timeout       time.Duration
	TriggerAlways bool
	Action        ActionFn
	TimeoutAction ActionFn
}

// Metrics is the optional observer the engine reports into. A nil Metrics on
// Engine is replaced with a no-op implementation.
type Metrics interface {
	ConditionInstalled()
	ConditionRemoved()
	ActionFired()
}

type noopMetrics struct{}

func (noopMetrics) ConditionInstalled() {}
func (noopMetrics) ConditionRemoved()   {}
func (noopMetrics) ActionFired()        {}

// record is the engine's internal tracking entry for an installed condition.
type record struct {
	Condition condition.Condition
	truth     bool
	meta      *Record
}

// Engine is the rule process manager. Build one with New.
type Engine struct {
	Hub     hub.Adapter
	Logf    func(format string, v ...interface{})
	Metrics Metrics

	timers *timer.Service
	clocks *clock.Service

	conditions       map[string]*record
	conditionParents map[string]map[string]struct{} // child id -> set of parent ids (rootSentinel included)

	attrSubscribers map[string]map[string]struct{} // "deviceID/attr" -> set of condition ids
	deviceAttrRefs  map[int]map[string]int         // deviceID -> attr -> refcount
	attrValues      map[string]device.Value        // "deviceID/attr" -> last known value

	workqueue chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// New builds an Engine wired to the given hub adapter and starts its
// work-queue loop.
func New(adapter hub.Adapter, logf func(format string, v ...interface{})) *Engine {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	obj := &Engine{
		Hub:              adapter,
		Logf:             logf,
		Metrics:          noopMetrics{},
		timers:           timer.New(),
		clocks:           clock.New(),
		conditions:       map[string]*record{},
		conditionParents: map[string]map[string]struct{}{},
		attrSubscribers:  map[string]map[string]struct{}{},
		deviceAttrRefs:   map[int]map[string]int{},
		attrValues:       map[string]device.Value{},
		workqueue:        make(chan func(), 64),
		done:             make(chan struct{}),
	}
	go obj.loop()
	return obj
}

// loop is the single consumer of obj.workqueue. Every mutation to the
// engine's state happens on this goroutine.
func (obj *Engine) loop() {
	for {
		select {
		case fn := <-obj.workqueue:
			fn()
		case <-obj.done:
			return
		}
	}
}

// submit enqueues fn to run on the loop goroutine without waiting for it to
// complete. Used for fire-and-forget notifications (hub events, timer
// expiries) that originate on a different goroutine.
func (obj *Engine) submit(fn func()) {
	select {
	case obj.workqueue <- fn:
	case <-obj.done:
	}
}

// enqueueSync runs fn on the loop goroutine and blocks until it has
// completed. Used by every exported method below so that external callers
// get synchronous, serialized semantics without needing their own lock.
func (obj *Engine) enqueueSync(fn func()) {
	wait := make(chan struct{})
	obj.submit(func() {
		fn()
		close(wait)
	})
	<-wait
}

// Close stops the engine's work-queue loop and cancels every live timer and
// clock. Safe to call once during shutdown.
func (obj *Engine) Close() {
	obj.closeOnce.Do(func() {
		close(obj.done)
		obj.timers.Close()
		obj.clocks.Close()
	})
}

// AddCondition installs rec.Condition as a root (directly installed, not
// merely a dependency of another condition), recursively installing any
// sub-conditions not already tracked, subscribing to referenced device
// attributes, computing the initial truth value, and arming any
// timeout/duration/check-time timers it implies. Returns the condition's
// identifier.
func (obj *Engine) AddCondition(rec *Record) (string, error) {
	var id string
	var err error
	obj.enqueueSync(func() {
		id, err = obj.addConditionRoot(rec)
	})
	return id, err
}

// RemoveCondition cancels id's timers, drops its tracking, detaches its
// device subscriptions, and recursively attempts to remove each
// sub-condition it uniquely introduced.
func (obj *Engine) RemoveCondition(id string) error {
	var err error
	obj.enqueueSync(func() {
		err = obj.removeConditionRoot(id)
	})
	return err
}

// CheckState returns id's last recorded truth value. The second return is
// false if id is not currently installed.
func (obj *Engine) CheckState(id string) (bool, bool) {
	var truth, ok bool
	obj.enqueueSync(func() {
		rec, exists := obj.conditions[id]
		ok = exists
		if exists {
			truth = rec.truth
		}
	})
	return truth, ok
}

func (obj *Engine) addConditionRoot(rec *Record) (string, error) {
	if rec == nil || rec.Condition == nil {
		return "", fmt.Errorf("procmgr: nil condition record")
	}
	id := rec.Condition.Identifier()
	if _, exists := obj.conditions[id]; exists {
		return "", fmt.Errorf("procmgr: condition %s is already installed", id)
	}

	if err := obj.installRecursive(rec.Condition, rec); err != nil {
		return "", errwrap.Wrapf(err, "procmgr: installing %s", id)
	}
	obj.addParentEdge(id, rootSentinel)
	obj.Metrics.ConditionInstalled()

	top := obj.conditions[id]
	if top.truth {
		switch {
		case rec.Duration > 0:
			obj.timers.Start(durationTimerID(id), rec.Duration, obj.onDurationFire)
		case rec.TriggerAlways && rec.Action != nil:
			obj.fireAction(id, top)
		}
	}
	if rec.Timeout > 0 {
		obj.timers.Start(timeoutTimerID(id), rec.Timeout, obj.onTimeoutFire)
	}
	obj.registerCheckTimes(id, rec.Condition)

	return id, nil
}

// installRecursive installs c and every not-yet-tracked sub-condition it
// declares, wiring child->parent dependency edges as it goes. If c is
// already tracked (a shared sub-condition reused by another parent), it is
// left untouched; the caller is responsible for adding the new parent edge.
func (obj *Engine) installRecursive(c condition.Condition, rec *Record) error {
	id := c.Identifier()
	if _, ok := obj.conditions[id]; ok {
		return nil
	}

	children := c.SubConditions()
	subStates := map[string]bool{}
	for _, child := range children {
		if err := obj.installRecursive(child, &Record{Condition: child}); err != nil {
			return err
		}
		obj.addParentEdge(child.Identifier(), id)
		subStates[child.Identifier()] = obj.conditions[child.Identifier()].truth
	}

	attrsSnapshot := map[int]map[string]device.Value{}
	for devID, attrs := range c.Devices() {
		for _, attr := range attrs {
			obj.subscribeAttr(devID, attr, id)
			if attrsSnapshot[devID] == nil {
				attrsSnapshot[devID] = map[string]device.Value{}
			}
			attrsSnapshot[devID][attr] = obj.attrValues[devKey(devID, attr)]
		}
	}

	truth := c.Initialize(attrsSnapshot, subStates)
	obj.conditions[id] = &record{Condition: c, truth: truth, meta: rec}
	return nil
}

func (obj *Engine) removeConditionRoot(id string) error {
	if _, ok := obj.conditions[id]; !ok {
		return fmt.Errorf("procmgr: condition %s is not installed", id)
	}
	obj.removeParentEdge(id, rootSentinel)
	obj.tryFree(id)
	return nil
}

// tryFree removes id if it no longer has any parents (including the root
// sentinel), cancelling its timers and releasing its device subscriptions,
// then recurses into its children to release the edges it uniquely held.
func (obj *Engine) tryFree(id string) {
	if len(obj.conditionParents[id]) > 0 {
		return
	}
	rec, ok := obj.conditions[id]
	if !ok {
		return
	}

	obj.timers.Cancel(durationTimerID(id))
	obj.timers.Cancel(timeoutTimerID(id))
	obj.unregisterCheckTimes(id, rec.Condition)

	for devID, attrs := range rec.Condition.Devices() {
		for _, attr := range attrs {
			obj.unsubscribeAttr(devID, attr, id)
		}
	}

	delete(obj.conditions, id)
	delete(obj.conditionParents, id)
	obj.Metrics.ConditionRemoved()

	for _, child := range rec.Condition.SubConditions() {
		obj.removeParentEdge(child.Identifier(), id)
		obj.tryFree(child.Identifier())
	}
}

func (obj *Engine) addParentEdge(childID, parentID string) {
	if obj.conditionParents[childID] == nil {
		obj.conditionParents[childID] = map[string]struct{}{}
	}
	obj.conditionParents[childID][parentID] = struct{}{}
}

func (obj *Engine) removeParentEdge(childID, parentID string) {
	set, ok := obj.conditionParents[childID]
	if !ok {
		return
	}
	delete(set, parentID)
	if len(set) == 0 {
		delete(obj.conditionParents, childID)
	}
}

func devKey(deviceID int, attribute string) string {
	return fmt.Sprintf("%d/%s", deviceID, attribute)
}

func durationTimerID(id string) string { return id + durationSuffix }
func timeoutTimerID(id string) string  { return id + timeoutSuffix }

func clockEntryID(condID string, ct condition.ClockTime) string {
	return fmt.Sprintf("%s@%02d:%02d", condID, ct.Hour, ct.Minute)
}

func clockEntryConditionID(entryID string) string {
	i := strings.LastIndex(entryID, "@")
	if i < 0 {
		return entryID
	}
	return entryID[:i]
}

func (obj *Engine) registerCheckTimes(id string, c condition.Condition) {
	for _, ct := range c.CheckTimes() {
		obj.clocks.Start(clockEntryID(id, ct), ct.Hour, ct.Minute, obj.onClockFire)
	}
}

func (obj *Engine) unregisterCheckTimes(id string, c condition.Condition) {
	for _, ct := range c.CheckTimes() {
		obj.clocks.Cancel(clockEntryID(id, ct))
	}
}

// subscribeAttr records that condID observes (deviceID, attribute). On the
// 0->1 transition for that attribute, it fetches the attribute's current
// value from the hub and (re)subscribes the device so the hub starts
// delivering events for it.
func (obj *Engine) subscribeAttr(deviceID int, attribute string, condID string) {
	key := devKey(deviceID, attribute)
	if obj.attrSubscribers[key] == nil {
		obj.attrSubscribers[key] = map[string]struct{}{}
	}
	if _, already := obj.attrSubscribers[key][condID]; already {
		return
	}
	obj.attrSubscribers[key][condID] = struct{}{}

	refs := obj.deviceAttrRefs[deviceID]
	if refs == nil {
		refs = map[string]int{}
		obj.deviceAttrRefs[deviceID] = refs
	}
	wasZero := refs[attribute] == 0
	refs[attribute]++
	if !wasZero {
		return
	}

	v, err := obj.Hub.GetAttribute(context.Background(), deviceID, attribute)
	if err != nil {
		obj.Logf("procmgr: GetAttribute(%d, %s) failed: %v", deviceID, attribute, err)
		v = device.Null
	}
	obj.attrValues[key] = v
	obj.resubscribeDevice(deviceID)
}

// unsubscribeAttr is the inverse of subscribeAttr: on the 1->0 transition it
// drops the cached value and either narrows the device's hub subscription or
// unsubscribes entirely if no attribute of that device is observed anymore.
func (obj *Engine) unsubscribeAttr(deviceID int, attribute string, condID string) {
	key := devKey(deviceID, attribute)
	if set, ok := obj.attrSubscribers[key]; ok {
		delete(set, condID)
		if len(set) == 0 {
			delete(obj.attrSubscribers, key)
		}
	}

	refs := obj.deviceAttrRefs[deviceID]
	if refs == nil {
		return
	}
	refs[attribute]--
	if refs[attribute] > 0 {
		return
	}
	delete(refs, attribute)
	delete(obj.attrValues, key)
	if len(refs) == 0 {
		delete(obj.deviceAttrRefs, deviceID)
		obj.Hub.Unsubscribe(deviceID)
		return
	}
	obj.resubscribeDevice(deviceID)
}

func (obj *Engine) resubscribeDevice(deviceID int) {
	refs := obj.deviceAttrRefs[deviceID]
	attrs := make([]string, 0, len(refs))
	for attr := range refs {
		attrs = append(attrs, attr)
	}
	obj.Hub.Subscribe(deviceID, attrs, obj.makeDeviceCallback(deviceID))
}

func (obj *Engine) makeDeviceCallback(deviceID int) hub.EventCallback {
	return func(ev hub.Event) {
		obj.submit(func() {
			obj.dispatchDeviceEvent(condition.Event{DeviceID: ev.DeviceID, Attribute: ev.Attribute, Value: ev.Value})
		})
	}
}

func (obj *Engine) onClockFire(entryID string) {
	obj.submit(func() {
		obj.dispatchClockTick(clockEntryConditionID(entryID))
	})
}

func (obj *Engine) onDurationFire(timerID string) {
	obj.submit(func() {
		id := strings.TrimSuffix(timerID, durationSuffix)
		rec, ok := obj.conditions[id]
		if !ok || rec.meta == nil || rec.meta.Action == nil {
			return
		}
		obj.fireAction(id, rec)
	})
}

func (obj *Engine) onTimeoutFire(timerID string) {
	obj.submit(func() {
		id := strings.TrimSuffix(timerID, timeoutSuffix)
		rec, ok := obj.conditions[id]
		if !ok || rec.meta == nil || rec.meta.TimeoutAction == nil {
			return
		}
		obj.timers.Cancel(durationTimerID(id))
		obj.timers.Cancel(timeoutTimerID(id))
		obj.Metrics.ActionFired()
		rec.meta.TimeoutAction(&ConditionManager{engine: obj})
	})
}

// fireAction cancels both of id's timers and invokes its action, in that
// order, so a duration-debounced firing can never race with a pending
// timeout and vice versa.
func (obj *Engine) fireAction(id string, rec *record) {
	obj.timers.Cancel(durationTimerID(id))
	obj.timers.Cancel(timeoutTimerID(id))
	if rec.meta == nil || rec.meta.Action == nil {
		return
	}
	obj.Metrics.ActionFired()
	rec.meta.Action(&ConditionManager{engine: obj})
}
