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

package kafka

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	sarama "github.com/Shopify/sarama"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"

	logging "github.com/op/go-logging"
)

var (
	_ = pushers.Register("kafka", New)
)

var log = logging.MustGetLogger("simple-honeypot/channels/kafka")

// Config holds the kafka channel settings.
type Config struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// Backend publishes every event as a JSON message on a kafka topic. Messages
// are keyed by session id so the events of one connection stay ordered
// within a partition.
type Backend struct {
	Config

	producer sarama.AsyncProducer

	ch chan map[string]interface{}
	wg sync.WaitGroup

	delivered uint64
	failed    uint64
}

// New returns a kafka backend connected to the configured brokers.
func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	c := Backend{
		ch: make(chan map[string]interface{}, 100),
	}

	for _, optionFn := range options {
		if err := optionFn(&c); err != nil {
			return nil, err
		}
	}

	if len(c.Brokers) == 0 {
		return nil, errors.New("kafka channel: brokers not set")
	}

	if c.Topic == "" {
		return nil, errors.New("kafka channel: topic not set")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(c.Brokers, config)
	if err != nil {
		return nil, err
	}

	c.producer = producer

	c.wg.Add(2)
	go c.run()
	go c.results()

	return &c, nil
}

func (hc *Backend) run() {
	defer hc.wg.Done()
	defer hc.producer.AsyncClose()

	for data := range hc.ch {
		marshalledData, err := json.Marshal(data)
		if err != nil {
			log.Errorf("Error marshaling event: %s", err.Error())
			continue
		}

		msg := &sarama.ProducerMessage{
			Topic: hc.Topic,
			Value: sarama.ByteEncoder(marshalledData),
		}

		if id, ok := data["session-id"].(string); ok {
			msg.Key = sarama.StringEncoder(id)
		}

		hc.producer.Input() <- msg
	}
}

func (hc *Backend) results() {
	defer hc.wg.Done()

	successes, errs := hc.producer.Successes(), hc.producer.Errors()

	for successes != nil || errs != nil {
		select {
		case _, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}

			atomic.AddUint64(&hc.delivered, 1)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			atomic.AddUint64(&hc.failed, 1)
			log.Errorf("Error producing event to kafka: %s", err.Err)
		}
	}
}

// Delivered returns the number of events acknowledged by kafka.
func (hc *Backend) Delivered() uint64 {
	return atomic.LoadUint64(&hc.delivered)
}

// Send queues the event for publishing.
func (hc *Backend) Send(e event.Event) {
	hc.ch <- event.ToMap(e)
}

// Close flushes queued events and shuts the producer down.
func (hc *Backend) Close() error {
	close(hc.ch)
	hc.wg.Wait()
	return nil
}
