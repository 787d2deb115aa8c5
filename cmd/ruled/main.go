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

// Command ruled is the reactive rule and scene engine daemon: it wires the
// hub client, the process manager, the rule and scene managers, and the HTTP
// API together, reloads any persisted rules and scenes, and serves until it
// receives a shutdown signal.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/hauto/ruled/api"
	"github.com/hauto/ruled/config"
	"github.com/hauto/ruled/hub"
	"github.com/hauto/ruled/metrics"
	"github.com/hauto/ruled/persist"
	"github.com/hauto/ruled/procmgr"
	"github.com/hauto/ruled/rule"
	"github.com/hauto/ruled/scene"
	"github.com/hauto/ruled/tool"
)

// waitForSignal blocks until the process receives SIGINT or SIGTERM.
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	signal.Notify(signals, syscall.SIGTERM)
	<-signals
}

// Main builds and runs the daemon, returning any startup or shutdown error.
func Main() error {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		return err
	}

	logf := func(format string, v ...interface{}) {
		log.Printf(format, v...)
	}

	collectors := metrics.New(prometheus.DefaultRegisterer)

	client := &hub.RESTClient{
		BaseURL:     cfg.HubAddress,
		AppID:       cfg.HubAppID,
		AccessToken: cfg.HubAccessToken,
		Logf:        logf,
		Observe:     collectors.ObserveHubCall,
	}

	if devices, err := client.LoadDevices(context.Background()); err != nil {
		logf("ruled: could not load device catalog from hub at startup: %v", err)
	} else {
		logf("ruled: loaded %d devices from hub", len(devices))
	}

	engine := procmgr.New(client, logf)
	engine.Metrics = collectors
	defer engine.Close()

	rulesStore := &persist.Store{Fs: afero.NewOsFs(), Path: cfg.RulesPath}
	scenesStore := &persist.Store{Fs: afero.NewOsFs(), Path: cfg.ScenesPath}

	scenes := scene.NewManager(engine, client, scenesStore, logf)
	rules := rule.NewManager(engine, client, scenes, rulesStore, logf)

	if err := scenes.ReloadFromDisk(); err != nil {
		logf("ruled: reloading scenes from %s: %v", cfg.ScenesPath, err)
	}
	if err := rules.ReloadFromDisk(); err != nil {
		logf("ruled: reloading rules from %s: %v", cfg.RulesPath, err)
	}

	tools := tool.New(rules, scenes)
	srv := api.New(client, tools, logf)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: srv.Handler(),
	}

	go func() {
		logf("ruled: listening on %s", cfg.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logf("ruled: http server error: %v", err)
		}
	}()

	waitForSignal()
	logf("ruled: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func main() {
	if err := Main(); err != nil {
		fmt.Fprintf(os.Stderr, "ruled: %v\n", err)
		os.Exit(1)
	}
}
