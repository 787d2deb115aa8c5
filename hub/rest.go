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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hauto/ruled/device"
	"github.com/hauto/ruled/util/semaphore"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// RESTClient is the real Adapter implementation. Outbound requests are
// rate-limited so that bursty rule re-evaluation (many conditions firing off
// the same device event) cannot hammer the hub.
type RESTClient struct {
	// BaseURL is the hub's API root, e.g. "https://hub.example.com".
	BaseURL string
	// AppID and AccessToken authenticate requests to the hub.
	AppID       string
	AccessToken string

	// Limiter caps outbound request rate. If nil, a sensible default is
	// constructed on first use.
	Limiter *rate.Limiter
	// Concurrency caps the number of in-flight requests. Defaults to 4.
	Concurrency int

	// Client is the underlying HTTP client. Defaults to http.DefaultClient.
	Client *http.Client

	// Logf is used for best-effort diagnostic logging.
	Logf func(format string, v ...interface{})

	// Observe, if set, is called after every round trip with the REST
	// method name and its wall-clock duration, for metrics.Collectors to
	// feed its hub-call-duration histogram.
	Observe func(method string, d time.Duration)

	initOnce sync.Once
	sem      *semaphore.Semaphore

	mu        sync.Mutex
	callbacks map[int]EventCallback
}

func (c *RESTClient) init() {
	c.initOnce.Do(func() {
		if c.Limiter == nil {
			c.Limiter = rate.NewLimiter(rate.Limit(20), 20)
		}
		if c.Concurrency <= 0 {
			c.Concurrency = 4
		}
		if c.Client == nil {
			c.Client = http.DefaultClient
		}
		if c.Logf == nil {
			c.Logf = func(string, ...interface{}) {}
		}
		c.sem = semaphore.NewSemaphore(c.Concurrency)
		c.callbacks = map[int]EventCallback{}
	})
}

// do performs a rate-limited, concurrency-capped round trip against the hub.
func (c *RESTClient) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	c.init()

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "hub: rate limiter wait failed")
	}
	if err := c.sem.P(1); err != nil {
		return nil, errors.Wrapf(err, "hub: semaphore acquire failed")
	}
	defer c.sem.V(1)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "hub: encoding request body")
		}
		reader = bytes.NewReader(raw)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "hub: building request to %s", url)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	if c.AppID != "" {
		req.Header.Set("X-App-Id", c.AppID)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "hub: request to %s failed", url)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "hub: reading response from %s", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hub: %s %s returned status %d: %s", method, url, resp.StatusCode, string(out))
	}
	return out, nil
}

func (c *RESTClient) observe(method string, start time.Time) {
	if c.Observe != nil {
		c.Observe(method, time.Since(start))
	}
}

// LoadDevices implements Adapter.
func (c *RESTClient) LoadDevices(ctx context.Context) ([]device.Device, error) {
	defer c.observe("load_devices", time.Now())
	raw, err := c.do(ctx, http.MethodGet, "/devices", nil)
	if err != nil {
		return nil, errors.Wrapf(err, "hub: LoadDevices")
	}
	var devices []device.Device
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, errors.Wrapf(err, "hub: decoding device list")
	}
	for i := range devices {
		if err := devices[i].Finalize(); err != nil {
			return nil, errors.Wrapf(err, "hub: finalizing device %d", devices[i].ID)
		}
	}
	return devices, nil
}

// SendCommand implements Adapter.
func (c *RESTClient) SendCommand(ctx context.Context, deviceID int, command string, arguments map[string]device.Value) error {
	defer c.observe("send_command", time.Now())
	path := fmt.Sprintf("/devices/%d/commands/%s", deviceID, command)
	_, err := c.do(ctx, http.MethodPost, path, arguments)
	if err != nil {
		return errors.Wrapf(err, "hub: SendCommand(%d, %s)", deviceID, command)
	}
	return nil
}

// GetAttribute implements Adapter.
func (c *RESTClient) GetAttribute(ctx context.Context, deviceID int, attribute string) (device.Value, error) {
	defer c.observe("get_attribute", time.Now())
	path := fmt.Sprintf("/devices/%d/attributes/%s", deviceID, attribute)
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return device.Null, errors.Wrapf(err, "hub: GetAttribute(%d, %s)", deviceID, attribute)
	}
	var v device.Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return device.Null, errors.Wrapf(err, "hub: decoding attribute value")
	}
	return v, nil
}

// Subscribe implements Adapter. The REST client does not itself open a
// streaming connection to the hub; it expects hub events to arrive over the
// HTTP ingress endpoint (see package api) and be routed here via Dispatch.
func (c *RESTClient) Subscribe(deviceID int, attributes []string, cb EventCallback) {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks[deviceID] = cb
}

// Unsubscribe implements Adapter.
func (c *RESTClient) Unsubscribe(deviceID int) {
	c.init()
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.callbacks, deviceID)
}

// Dispatch delivers an inbound hub event to whichever callback is currently
// subscribed for its device, if any. Called by the HTTP ingress handler.
func (c *RESTClient) Dispatch(ev Event) {
	c.init()
	c.mu.Lock()
	cb, ok := c.callbacks[ev.DeviceID]
	c.mu.Unlock()
	if !ok {
		c.Logf("hub: dropping event for unsubscribed device %d", ev.DeviceID)
		return
	}
	cb(ev)
}
