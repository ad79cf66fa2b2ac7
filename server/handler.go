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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	"github.com/cbk914/simple-honeypot/services"
	"github.com/rs/xid"
)

const readBufferSize = 4096

// session is a single accepted connection. It is owned by one goroutine.
type session struct {
	id xid.ID

	service *serviceMap

	conn     net.Conn
	emulator services.Emulator
	channel  pushers.Channel
}

func (hc *Honeytrap) handle(ctx context.Context, sm *serviceMap, conn net.Conn) {
	s := &session{
		id:      xid.New(),
		service: sm,
		conn:    TimeoutConn(conn, hc.config.IdleTimeout.Duration()),
		channel: hc.channel,
	}

	s.serve(ctx)
}

func (s *session) options(options ...event.Option) event.Option {
	return event.NewWith(
		event.SessionSensor,
		event.Service(s.service.Name),
		event.Category(s.service.Type),
		event.SourceAddr(s.conn.RemoteAddr()),
		event.DestinationAddr(s.conn.LocalAddr()),
		event.SessionID(s.id.String()),
		event.NewWith(options...),
	)
}

// sendSafe delivers e, logging instead of propagating a panicking sink.
func (s *session) sendSafe(e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Error sending event for session %s: %v", s.id, r)
		}
	}()

	s.channel.Send(e)
}

// serve runs the session until the peer disconnects, an i/o error occurs or
// ctx is done. Exactly one ConnectionClosed event is sent, whatever the
// reason.
func (s *session) serve(ctx context.Context) {
	var err error

	defer s.conn.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)

			log.Errorf("Error handling session %s on %s: %v", s.id, s.service.Name, r)

			s.sendSafe(event.New(
				s.options(),
				event.SeverityFatal,
				event.Stack(),
				event.Message("%+v", r),
			))
		}

		s.sendSafe(event.New(
			s.options(),
			event.ConnectionClosed,
			event.Error(err),
		))

		log.Infof("Connection closed on %s", s.service.Name)
	}()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.conn.Close()
		case <-done:
		}
	}()

	log.Infof("Connection from %s on %s", s.conn.RemoteAddr(), s.service.Name)

	s.channel.Send(event.New(
		s.options(),
		event.ConnectionOpened,
	))

	s.emulator = s.service.servicer.Emulate()

	if greeting := s.emulator.Open(); len(greeting) > 0 {
		if _, err = s.conn.Write(greeting); err != nil {
			return
		}
	}

	buf := make([]byte, readBufferSize)

	for {
		n, rerr := s.conn.Read(buf)
		if n > 0 {
			if err = s.data(buf[:n]); err != nil {
				return
			}
		}

		if rerr == nil {
			continue
		}

		if !errors.Is(rerr, io.EOF) && ctx.Err() == nil {
			err = rerr
		}

		return
	}
}

// data handles one inbound chunk.
func (s *session) data(p []byte) error {
	reply, annotations := s.emulator.Data(p)

	text := strings.TrimSpace(services.Text(p))

	log.Infof("Received data on %s: %s", s.service.Name, text)

	s.channel.Send(event.New(
		s.options(annotations...),
		event.DataReceived,
		event.Custom("data", text),
		event.Payload(p),
	))

	if len(reply) == 0 {
		return nil
	}

	_, err := s.conn.Write(reply)
	return err
}
