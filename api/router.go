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

// Package api is the HTTP ingress and control surface: a gin router that
// forwards inbound hub events into the hub adapter, and exposes the rule
// and scene tool contracts, a health probe, and Prometheus exposition.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/tool"
)

// Server bundles everything the router needs to handle a request.
type Server struct {
	Hub   *hub.RESTClient
	Tools *tool.Tools
	Logf  func(format string, v ...interface{})

	router *gin.Engine
}

// New builds a Server and registers every route.
func New(h *hub.RESTClient, tools *tool.Tools, logf func(string, ...interface{})) *Server {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	obj := &Server{Hub: h, Tools: tools, Logf: logf}
	obj.router = gin.New()
	obj.router.Use(obj.ginLogger(), gin.Recovery())
	obj.registerRoutes()
	return obj
}

// Handler returns the http.Handler to pass to an http.Server.
func (obj *Server) Handler() http.Handler { return obj.router }

// ginLogger emits one structured line per request.
func (obj *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		obj.Logf("%s %s %s (%d)", c.ClientIP(), c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

func (obj *Server) registerRoutes() {
	obj.router.GET("/healthz", obj.handleHealthz)
	obj.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	obj.router.POST("/events", obj.handleEvent)

	obj.router.POST("/rules", obj.handleInstallRule)
	obj.router.DELETE("/rules/:name", obj.handleUninstallRule)
	obj.router.GET("/rules", obj.handleListRules)
	obj.router.GET("/rules/:name", obj.handleDescribeRule)
	obj.router.POST("/rules/:name/execute", obj.handleExecuteActions)

	obj.router.POST("/scenes", obj.handleCreateScene)
	obj.router.DELETE("/scenes/:name", obj.handleDeleteScene)
	obj.router.GET("/scenes", obj.handleListScenes)
}

func (obj *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
