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

// Package tool exposes thin, JSON-friendly operations over the rule and
// scene managers, consumed by the HTTP API layer and ultimately by the
// out-of-scope assistant's tool-dispatch loop. Nothing here touches
// procmgr directly; every operation delegates to rule.Manager or
// scene.Manager.
package tool

import (
	"github.com/sanity-io/litter"

	"github.com/hauto/ruled/rule"
	"github.com/hauto/ruled/scene"
)

// Tools bundles the two managers this contract layer dispatches to.
type Tools struct {
	Rules  *rule.Manager
	Scenes *scene.Manager
}

// New builds a Tools bundle.
func New(rules *rule.Manager, scenes *scene.Manager) *Tools {
	return &Tools{Rules: rules, Scenes: scenes}
}

// InstallRule installs r.
func (obj *Tools) InstallRule(r rule.Rule) error {
	return obj.Rules.InstallRule(r)
}

// UninstallRule removes the named rule.
func (obj *Tools) UninstallRule(name string) error {
	return obj.Rules.UninstallRule(name)
}

// ListRules returns every installed rule.
func (obj *Tools) ListRules() []rule.Rule {
	return obj.Rules.ListRules()
}

// DescribeRule returns a readable dump of the named rule's declarative model
// plus its compiled trigger condition tree, rendered with litter so an
// assistant gets a deterministic structural view rather than a raw %+v.
func (obj *Tools) DescribeRule(name string) (string, bool) {
	r, ok := obj.Rules.GetRule(name)
	if !ok {
		return "", false
	}
	trigger, _ := obj.Rules.GetCompiledTrigger(name)
	return litter.Sdump(map[string]interface{}{
		"rule":             r,
		"compiled_trigger": trigger,
	}), true
}

// ExecuteActions runs actions once, ad hoc, outside of any installed rule.
func (obj *Tools) ExecuteActions(actions []rule.ActionSpec) error {
	return obj.Rules.ExecuteActions(actions)
}

// CreateScene installs sc.
func (obj *Tools) CreateScene(sc scene.Scene) error {
	return obj.Scenes.CreateScene(sc)
}

// DeleteScene removes the named scene.
func (obj *Tools) DeleteScene(name string) error {
	return obj.Scenes.DeleteScene(name)
}

// ListScenes returns every installed scene and its current is-set state,
// optionally filtered to only-set or only-unset scenes.
func (obj *Tools) ListScenes(filterSet *bool) []scene.Summary {
	return obj.Scenes.GetAllScenes(filterSet)
}
