// Copyright 2016-2019 DutchSec (https://dutchsec.com/)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package raven forwards events over a websocket to a remote collector.
package raven

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/cbk914/simple-honeypot/cmd"
	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	logging "github.com/op/go-logging"
)

var (
	_ = pushers.Register("raven", New)
)

var log = logging.MustGetLogger("simple-honeypot/channels/raven")

// Config holds the raven channel settings.
type Config struct {
	Server   string `toml:"server"`
	Token    string `toml:"token"`
	Insecure bool   `toml:"insecure"`

	Reconnect time.Duration `toml:"-"`
}

// Backend keeps a websocket open to the collector and writes every event as
// a binary JSON message, reconnecting when the connection drops.
type Backend struct {
	Config

	ch   chan event.Event
	quit chan struct{}
	done chan struct{}
}

func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	c := Backend{
		Config: Config{
			Reconnect: 5 * time.Second,
		},
		ch:   make(chan event.Event, 100),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	for _, optionFn := range options {
		if err := optionFn(&c); err != nil {
			return nil, err
		}
	}

	if c.Server == "" {
		return nil, errors.New("raven channel: server not set")
	}

	go c.run()

	return &c, nil
}

func (hc *Backend) dialer() *websocket.Dialer {
	return &websocket.Dialer{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: hc.Insecure,
		},
	}
}

func (hc *Backend) run() {
	defer close(hc.done)

	d := hc.dialer()

	bo := &backoff.ExponentialBackOff{
		InitialInterval:     hc.Reconnect,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         time.Minute,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	bo.Reset()

	for {
		if hc.session(d) {
			bo.Reset()
		}

		wait := bo.NextBackOff()

		select {
		case <-hc.quit:
			return
		case <-time.After(wait):
		}

		log.Infof("Connection lost. Reconnecting in %s.", wait)
	}
}

// session writes events until the connection fails or the backend is
// closed. It returns false when the collector could not be reached.
func (hc *Backend) session(d *websocket.Dialer) bool {
	headers := http.Header{}
	headers.Set("User-Agent", fmt.Sprintf("simple-honeypot/%s (%s; %s) %s", cmd.Version, runtime.GOOS, runtime.GOARCH, cmd.ShortCommitID))
	headers.Set("Authorization", fmt.Sprintf("Bearer %s", hc.Token))

	c, _, err := d.Dial(hc.Server, headers)
	if err != nil {
		log.Errorf("Error connecting to Raven server: %s: %s", hc.Server, err.Error())
		return false
	}

	defer c.Close()

	log.Debugf("Connected to Raven")
	defer log.Debugf("Connection to Raven lost")

	closed := make(chan struct{})

	// the collector never sends anything we act upon, but reading is
	// needed to notice a closed connection.
	go func() {
		defer close(closed)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-hc.quit:
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return true
		case <-closed:
			return true
		case evt := <-hc.ch:
			// heartbeats are implied by the connection itself
			if evt.Get("category") == "heartbeat" {
				continue
			}

			data, err := json.Marshal(evt)
			if err != nil {
				log.Errorf("Error occurred while marshalling: %s", err.Error())
				continue
			}

			if err := c.WriteMessage(websocket.BinaryMessage, data); err != nil {
				log.Errorf("Could not write: %s", err.Error())
				return true
			}
		}
	}
}

// Send queues the event, dropping it when the queue is full.
func (hc *Backend) Send(e event.Event) {
	select {
	case hc.ch <- e:
	default:
		log.Errorf("Could not send more messages, channel full")
	}
}

// Close stops the backend.
func (hc *Backend) Close() error {
	close(hc.quit)
	<-hc.done
	return nil
}
