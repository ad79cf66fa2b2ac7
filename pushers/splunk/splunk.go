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

// Package splunk delivers events to one or more splunk HTTP event collectors.
package splunk

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	hec "github.com/fuyufjh/splunk-hec-go"

	logging "github.com/op/go-logging"
)

var (
	_ = pushers.Register("splunk", New)
)

var log = logging.MustGetLogger("simple-honeypot/channels/splunk")

const (
	batchSize     = 100
	flushInterval = time.Second
)

// Backend batches events and writes them to the configured collectors.
type Backend struct {
	Config

	client hec.HEC

	ch   chan event.Event
	done chan struct{}
}

func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	c := Backend{
		ch:   make(chan event.Event, 100),
		done: make(chan struct{}),
	}

	for _, optionFn := range options {
		if err := optionFn(&c); err != nil {
			return nil, err
		}
	}

	if len(c.Endpoints) == 0 {
		return nil, ErrEndpointsNotSet
	}

	if c.Token == "" {
		return nil, ErrTokenNotSet
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: c.tlsConfig,
	}

	c.client = hec.NewCluster(c.Endpoints, c.Token)
	c.client.SetHTTPClient(&http.Client{
		Transport: transport,
		Timeout:   10 * time.Second,
	})

	go c.run()

	return &c, nil
}

func (s *Backend) run() {
	defer close(s.done)

	batch := []*hec.Event{}

	flush := func() {
		if len(batch) == 0 {
			return
		}

		if err := s.client.WriteBatch(batch); err != nil {
			log.Errorf("Error writing %d events: %s", len(batch), err.Error())
		}

		batch = []*hec.Event{}
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				flush()
				return
			}

			batch = append(batch, newEvent(e))
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func newEvent(e event.Event) *hec.Event {
	m := event.ToMap(e)

	he := &hec.Event{
		Source:     hec.String("simple-honeypot"),
		SourceType: hec.String("_json"),
		Event:      m,
	}

	if t, ok := m["date"].(time.Time); ok {
		he.Time = hec.String(fmt.Sprintf("%d.%03d", t.Unix(), t.Nanosecond()/int(time.Millisecond)))
	}

	return he
}

func (s *Backend) Send(e event.Event) {
	s.ch <- e
}

// Close writes the pending batch and stops the backend.
func (s *Backend) Close() error {
	close(s.ch)
	<-s.done
	return nil
}
