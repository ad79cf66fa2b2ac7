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

// Package server runs the honeypot: one listener per configured service and
// one session per accepted connection, all reporting to the event bus.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbk914/simple-honeypot/cmd"
	"github.com/cbk914/simple-honeypot/config"
	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/listener"
	_ "github.com/cbk914/simple-honeypot/listener/socket"
	"github.com/cbk914/simple-honeypot/server/profiler"
	"github.com/fatih/color"
	"github.com/pkg/profile"
	isatty "github.com/mattn/go-isatty"
	"github.com/rs/xid"

	"github.com/cbk914/simple-honeypot/pushers"
	_ "github.com/cbk914/simple-honeypot/pushers/console"
	_ "github.com/cbk914/simple-honeypot/pushers/elasticsearch"
	"github.com/cbk914/simple-honeypot/pushers/eventbus"
	_ "github.com/cbk914/simple-honeypot/pushers/file"
	"github.com/cbk914/simple-honeypot/pushers/geoip"
	_ "github.com/cbk914/simple-honeypot/pushers/kafka"
	_ "github.com/cbk914/simple-honeypot/pushers/rabbitmq"
	_ "github.com/cbk914/simple-honeypot/pushers/raven"
	_ "github.com/cbk914/simple-honeypot/pushers/splunk"

	"github.com/cbk914/simple-honeypot/services"
	_ "github.com/cbk914/simple-honeypot/services/ftp"
	_ "github.com/cbk914/simple-honeypot/services/telnet"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/server")

// ErrNoListeners is returned by Run when no service could be bound.
var ErrNoListeners = errors.New("no service could be started")

// Honeytrap coordinates the listeners of all configured services.
type Honeytrap struct {
	config *config.Config

	profiler profiler.Profiler

	bus *eventbus.EventBus

	// channel is what sessions report to
	channel pushers.Channel

	closers []io.Closer

	services []*serviceMap

	extraServices []config.Service
	extraChannels []pushers.Channel

	token        string
	persistToken bool

	dataDir     string
	profileMode func(*profile.Profile)
}

// Wraps a Servicer, adding some metadata
type serviceMap struct {
	config.Service

	servicer services.Servicer

	listen func(...func(listener.Listener) error) (listener.Listener, error)
}

// New configures the services and channels. Nothing is bound until Run.
func New(options ...OptionFn) (*Honeytrap, error) {
	conf := config.Default

	h := &Honeytrap{
		config:   &conf,
		bus:      eventbus.New(),
		profiler: profiler.Dummy(),
	}

	for _, fn := range options {
		if err := fn(h); err != nil {
			return nil, err
		}
	}

	if err := h.setupDataDir(); err != nil {
		return nil, err
	}

	if h.token == "" {
		h.token = xid.New().String()
	}

	if err := h.setupChannels(); err != nil {
		h.close()
		return nil, err
	}

	if err := h.setupServices(); err != nil {
		h.close()
		return nil, err
	}

	if undecoded := h.config.Undecoded(); len(undecoded) != 0 {
		log.Warningf("Unrecognized keys in configuration: %v", undecoded)
	}

	return h, nil
}

// setupDataDir resolves the data dir, WithDataDir taking precedence over the
// data-dir key, and sets up the token and profiler stored there.
func (hc *Honeytrap) setupDataDir() error {
	dir := hc.dataDir
	if dir == "" {
		dir = hc.config.DataDir
	}

	if dir == "" && (hc.persistToken || hc.profileMode != nil) {
		dir = config.DefaultDataDir
	}

	if dir == "" {
		return nil
	}

	p, err := resolveDir(dir)
	if err != nil {
		return fmt.Errorf("data dir %s: %w", dir, err)
	}

	hc.dataDir = p

	if hc.persistToken {
		token, err := loadToken(p)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}

		hc.token = token
	}

	if hc.profileMode != nil {
		hc.profiler = profiler.New(p, hc.profileMode)
	}

	return nil
}

func (hc *Honeytrap) setupChannels() error {
	channels := map[string]pushers.Channel{}

	names := []string{}
	for name := range hc.config.Channels {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		s := hc.config.Channels[name]

		x := struct {
			Type string `toml:"type"`
		}{}

		if err := hc.config.PrimitiveDecode(s, &x); err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}

		if x.Type == "" {
			return fmt.Errorf("channel %s: type not set", name)
		}

		channelFunc, ok := pushers.Get(x.Type)
		if !ok {
			return fmt.Errorf("channel %s: type %s not supported, available: %v", name, x.Type, pushers.Names())
		}

		d, err := channelFunc(
			pushers.WithConfig(s, hc.config),
		)
		if err != nil {
			return fmt.Errorf("channel %s(%s): %w", name, x.Type, err)
		}

		if closer, ok := d.(io.Closer); ok {
			hc.closers = append(hc.closers, closer)
		}

		channels[name] = d
	}

	isChannelUsed := map[string]bool{}

	for _, s := range hc.config.Filters {
		x := struct {
			Channels   []string `toml:"channel"`
			Services   []string `toml:"services"`
			Categories []string `toml:"categories"`
		}{}

		if err := hc.config.PrimitiveDecode(s, &x); err != nil {
			return fmt.Errorf("filter: %w", err)
		}

		for _, name := range x.Channels {
			channel, ok := channels[name]
			if !ok {
				return fmt.Errorf("filter: channel %s not found", name)
			}

			isChannelUsed[name] = true

			if len(x.Categories) != 0 {
				fn, err := pushers.RegexFilterFunc("category", x.Categories)
				if err != nil {
					return err
				}

				channel = pushers.FilterChannel(channel, fn)
			}

			if len(x.Services) != 0 {
				fn, err := pushers.RegexFilterFunc("service", x.Services)
				if err != nil {
					return err
				}

				channel = pushers.FilterChannel(channel, fn)
			}

			if err := hc.bus.Subscribe(channel); err != nil {
				return fmt.Errorf("channel %s: %w", name, err)
			}
		}
	}

	// channels without filter receive everything
	for _, name := range names {
		if isChannelUsed[name] {
			continue
		}

		log.Debugf("Channel %s has no filter, subscribing to all events", name)

		if err := hc.bus.Subscribe(channels[name]); err != nil {
			return fmt.Errorf("channel %s: %w", name, err)
		}
	}

	for _, channel := range hc.extraChannels {
		if err := hc.bus.Subscribe(channel); err != nil {
			return err
		}
	}

	if hc.bus.Len() == 0 {
		fn, _ := pushers.Get("console")

		c, err := fn()
		if err != nil {
			return err
		}

		if closer, ok := c.(io.Closer); ok {
			hc.closers = append(hc.closers, closer)
		}

		hc.bus.Subscribe(c)
	}

	hc.channel = pushers.TokenChannel(hc.bus, hc.token)

	if db := hc.config.GeoIP.Database; db != "" {
		g, err := geoip.Open(os.ExpandEnv(db), hc.channel)
		if err != nil {
			return fmt.Errorf("geoip: %w", err)
		}

		hc.closers = append(hc.closers, g)
		hc.channel = g
	}

	return nil
}

func (hc *Honeytrap) setupServices() error {
	configured, err := hc.config.Services()
	if err != nil {
		return err
	}

	all := config.Merge(configured, hc.extraServices...)

	if err := config.Validate(all); err != nil {
		return err
	}

	for _, s := range all {
		if s.Type == "" {
			s.Type = s.Name
		}

		if s.Listener == "" {
			s.Listener = config.DefaultListener
		}

		listen, ok := listener.Get(s.Listener)
		if !ok {
			return fmt.Errorf("service %s: listener %s not supported, available: %v", s.Name, s.Listener, listener.Names())
		}

		fn, ok := services.Get(s.Type)
		if !ok {
			log.Warningf("Service %s: unknown type %s, capturing passively", s.Name, s.Type)
		}

		options := []services.ServicerFunc{}
		if s.Options != nil {
			options = append(options, services.WithConfig(*s.Options, hc.config))
		}

		servicer, err := fn(options...)
		if err != nil {
			return fmt.Errorf("service %s: %w", s.Name, err)
		}

		hc.services = append(hc.services, &serviceMap{
			Service:  s,
			servicer: servicer,
			listen:   listen,
		})

		log.Infof("Configured service %s", s)
	}

	return nil
}

// send delivers a service or heartbeat event. A panicking sink is logged and
// does not take the listener down with it.
func (hc *Honeytrap) send(e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Error sending %s event: %v", e.Get("sensor"), r)
		}
	}()

	hc.channel.Send(e)
}

func (hc *Honeytrap) heartbeat(ctx context.Context, interval time.Duration) {
	beat := time.NewTicker(interval)
	defer beat.Stop()

	count := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-beat.C:
		}

		hc.send(event.New(
			event.HeartbeatSensor,
			event.Category("heartbeat"),
			event.SeverityInfo,
			event.Custom("sequence", count),
		))

		count++
	}
}

func IsTerminal(f *os.File) bool {
	if isatty.IsTerminal(f.Fd()) {
		return true
	} else if isatty.IsCygwinTerminal(f.Fd()) {
		return true
	}

	return false
}

// Run binds every service and serves connections until ctx is cancelled or
// no listener is left. It returns ErrNoListeners when every bind failed.
func (hc *Honeytrap) Run(ctx context.Context) error {
	if len(hc.services) == 0 {
		log.Warning("No services configured.")
		return nil
	}

	if IsTerminal(os.Stdout) {
		fmt.Println(color.YellowString(`
     _                 _            _
 ___(_)_ __ ___  _ __ | | ___      | |__   ___  _ __   ___ _   _ _ __   ___ | |_
/ __| | '_ ' _ \| '_ \| |/ _ \_____| '_ \ / _ \| '_ \ / _ \ | | | '_ \ / _ \| __|
\__ \ | | | | | | |_) | |  __/_____| | | | (_) | | | |  __/ |_| | |_) | (_) | |_
|___/_|_| |_| |_| .__/|_|\___|     |_| |_|\___/|_| |_|\___|\__, | .__/ \___/ \__|
                |_|                                        |___/|_|
`))
	}

	fmt.Println(color.YellowString("simple-honeypot starting (%s)...", hc.token))
	fmt.Println(color.YellowString("Version: %s (%s)", cmd.Version, cmd.ShortCommitID))

	log.Debugf("Using datadir: %s", hc.dataDir)

	hc.profiler.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)

		if interval := hc.config.Heartbeat.Duration(); interval > 0 {
			hc.heartbeat(ctx, interval)
		}
	}()

	var started int32

	var wg sync.WaitGroup
	for _, sm := range hc.services {
		wg.Add(1)

		go func(sm *serviceMap) {
			defer wg.Done()

			if hc.serve(ctx, sm) {
				atomic.AddInt32(&started, 1)
			}
		}(sm)
	}

	wg.Wait()

	cancel()
	<-heartbeatDone

	if atomic.LoadInt32(&started) == 0 {
		return ErrNoListeners
	}

	return nil
}

func (hc *Honeytrap) close() {
	for i := len(hc.closers) - 1; i >= 0; i-- {
		if err := hc.closers[i].Close(); err != nil {
			log.Errorf("Error closing channel: %s", err.Error())
		}
	}

	hc.closers = nil
}

// Stop flushes and closes the channels. Call it after Run returned.
func (hc *Honeytrap) Stop() {
	hc.profiler.Stop()

	hc.close()

	fmt.Println(color.YellowString("simple-honeypot stopped."))
}
