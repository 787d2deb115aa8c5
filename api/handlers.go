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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/rule"
	"github.com/hauto/ruled/scene"
)

// handleEvent decodes a hub event body and forwards it to the hub client's
// Dispatch, which routes it to whichever procmgr callback subscribed to
// that device.
func (obj *Server) handleEvent(c *gin.Context) {
	var ev hub.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	obj.Hub.Dispatch(ev)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (obj *Server) handleInstallRule(c *gin.Context) {
	var r rule.Rule
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := obj.Tools.InstallRule(r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (obj *Server) handleUninstallRule(c *gin.Context) {
	name := c.Param("name")
	if err := obj.Tools.UninstallRule(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (obj *Server) handleListRules(c *gin.Context) {
	c.JSON(http.StatusOK, obj.Tools.ListRules())
}

func (obj *Server) handleDescribeRule(c *gin.Context) {
	name := c.Param("name")
	desc, ok := obj.Tools.DescribeRule(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "description": desc})
}

func (obj *Server) handleExecuteActions(c *gin.Context) {
	var actions []rule.ActionSpec
	if err := c.ShouldBindJSON(&actions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := obj.Tools.ExecuteActions(actions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "executed"})
}

func (obj *Server) handleCreateScene(c *gin.Context) {
	var sc scene.Scene
	if err := c.ShouldBindJSON(&sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := obj.Tools.CreateScene(sc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sc)
}

func (obj *Server) handleDeleteScene(c *gin.Context) {
	name := c.Param("name")
	if err := obj.Tools.DeleteScene(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (obj *Server) handleListScenes(c *gin.Context) {
	var filter *bool
	switch c.Query("is_set") {
	case "true":
		v := true
		filter = &v
	case "false":
		v := false
		filter = &v
	}
	c.JSON(http.StatusOK, obj.Tools.ListScenes(filter))
}
