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

package condition

import (
	"fmt"

	"github.com/hauto/ruled/device"
)

// BoolOp is a Boolean condition's combinator.
type BoolOp string

// The fixed combinator enum.
const (
	BoolAnd BoolOp = "and"
	BoolOr  BoolOp = "or"
	BoolNot BoolOp = "not"
)

// Boolean combines child conditions with and/or/not. Combinators
// short-circuit logically when computing Evaluate, but every child is
// always installed and tracked structurally — there is no lazy
// installation of short-circuited branches.
type Boolean struct {
	id string

	Op       BoolOp
	Children []Condition

	states map[string]bool
}

// NewBoolean builds a Boolean condition. `not` requires exactly one child.
func NewBoolean(op BoolOp, children ...Condition) (*Boolean, error) {
	switch op {
	case BoolAnd, BoolOr:
		if len(children) == 0 {
			return nil, fmt.Errorf("condition: boolean `%s` requires at least one child", op)
		}
	case BoolNot:
		if len(children) != 1 {
			return nil, fmt.Errorf("condition: boolean `not` requires exactly one child, got %d", len(children))
		}
	default:
		return nil, fmt.Errorf("condition: unknown boolean operator `%s`", op)
	}
	return &Boolean{
		id:       nextID("boolean"),
		Op:       op,
		Children: children,
		states:   map[string]bool{},
	}, nil
}

// Identifier implements Condition.
func (b *Boolean) Identifier() string { return b.id }

// Devices implements Condition. Boolean observes no devices directly; the
// process manager aggregates its children's Devices() via SubConditions.
func (b *Boolean) Devices() map[int][]string { return nil }

// SubConditions implements Condition.
func (b *Boolean) SubConditions() []Condition { return b.Children }

// Initialize implements Condition.
func (b *Boolean) Initialize(attrs map[int]map[string]device.Value, subStates map[string]bool) bool {
	for _, c := range b.Children {
		if v, ok := subStates[c.Identifier()]; ok {
			b.states[c.Identifier()] = v
		}
	}
	return b.Evaluate()
}

// OnDeviceEvent implements Condition. Boolean has no direct device
// dependency, so this is a no-op; its children are notified separately by
// the process manager.
func (b *Boolean) OnDeviceEvent(ev Event) {}

// OnSubConditionChange implements Condition.
func (b *Boolean) OnSubConditionChange(childID string, newState bool) {
	b.states[childID] = newState
}

// CheckTimes implements Condition. Boolean has no clock schedule of its
// own.
func (b *Boolean) CheckTimes() []ClockTime { return nil }

// Evaluate implements Condition.
func (b *Boolean) Evaluate() bool {
	switch b.Op {
	case BoolNot:
		return !b.states[b.Children[0].Identifier()]
	case BoolAnd:
		for _, c := range b.Children {
			if !b.states[c.Identifier()] {
				return false
			}
		}
		return true
	case BoolOr:
		for _, c := range b.Children {
			if b.states[c.Identifier()] {
				return true
			}
		}
		return false
	default:
		return false
	}
}
