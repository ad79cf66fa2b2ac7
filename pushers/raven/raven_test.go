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

package raven

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	"github.com/gorilla/websocket"
)

func WithServer(url, token string) pushers.ChannelFunc {
	return func(c pushers.Channel) error {
		b := c.(*Backend)
		b.Server = url
		b.Token = token
		b.Reconnect = 10 * time.Millisecond
		return nil
	}
}

func TestChannelsRavenSend(t *testing.T) {
	received := make(chan map[string]interface{}, 10)
	auth := make(chan string, 1)

	upgrader := websocket.Upgrader{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %s", err)
			return
		}
		defer c.Close()

		for {
			_, data, err := c.ReadMessage()
			if err != nil {
				return
			}

			m := map[string]interface{}{}
			if err := json.Unmarshal(data, &m); err != nil {
				t.Errorf("invalid json: %s", err)
				return
			}

			received <- m
		}
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	c, err := New(WithServer(url, "secret"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.(*Backend).Close()

	c.Send(event.New(event.Category("heartbeat")))
	c.Send(event.New(event.Service("ssh"), event.ConnectionOpened))

	select {
	case m := <-received:
		if m["service"] != "ssh" {
			t.Errorf("expected ssh event, got %v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	if got := <-auth; got != "Bearer secret" {
		t.Errorf("authorization header: %q", got)
	}
}

func TestServerRequired(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without server")
	}
}
