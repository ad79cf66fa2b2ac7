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

// Package elasticsearch indexes events into an elasticsearch cluster using
// the bulk api.
package elasticsearch

import (
	"context"
	"time"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	uuid "github.com/satori/go.uuid"
	elastic "gopkg.in/olivere/elastic.v5"

	logging "github.com/op/go-logging"
)

var (
	_ = pushers.Register("elasticsearch", New)
)

var log = logging.MustGetLogger("simple-honeypot/channels/elasticsearch")

// Backend adds every event as an index request to a bulk processor.
type Backend struct {
	Config

	client *elastic.Client
	bulk   *elastic.BulkProcessor
}

func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	c := Backend{}

	for _, optionFn := range options {
		if err := optionFn(&c); err != nil {
			return nil, err
		}
	}

	if c.URL == nil {
		return nil, ErrElasticsearchNoURL
	}

	client, err := elastic.NewClient(c.options...)
	if err != nil {
		return nil, err
	}

	bulk, err := client.BulkProcessor().
		Name("simple-honeypot").
		Workers(1).
		BulkActions(100).
		FlushInterval(time.Second).
		After(c.after).
		Do(context.Background())
	if err != nil {
		return nil, err
	}

	c.client = client
	c.bulk = bulk

	return &c, nil
}

func (hc *Backend) after(executionID int64, requests []elastic.BulkableRequest, response *elastic.BulkResponse, err error) {
	if err != nil {
		log.Errorf("Error executing bulk: %s", err.Error())
		return
	}

	if failed := response.Failed(); len(failed) > 0 {
		log.Errorf("Failed to index %d of %d events", len(failed), len(requests))
	}
}

func (hc *Backend) Send(e event.Event) {
	if e.Get("category") == "heartbeat" {
		return
	}

	messageID := uuid.NewV4()

	req := elastic.NewBulkIndexRequest().
		Index(hc.index).
		Type("event").
		Id(messageID.String()).
		Doc(e)

	hc.bulk.Add(req)
}

// Close commits all outstanding requests.
func (hc *Backend) Close() error {
	return hc.bulk.Close()
}
