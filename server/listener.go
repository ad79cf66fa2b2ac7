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
	"net"
	"sync"
	"time"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/listener"
	"github.com/fatih/color"
	"golang.org/x/time/rate"
)

// serve binds the service and accepts connections until ctx is done or the
// listener fails. It returns false when the service could not be bound.
func (hc *Honeytrap) serve(ctx context.Context, sm *serviceMap) bool {
	options := []func(listener.Listener) error{
		listener.WithAddress(sm.Address()),
	}

	if d := sm.KeepAlive.Duration(); d > 0 {
		options = append(options, listener.WithKeepAlive(d))
	}

	l, err := sm.listen(options...)
	if err == nil {
		err = l.Start(ctx)
	}

	if err != nil {
		fmt.Println(color.RedString("Error starting %s on %s: %s", sm.Name, sm.Address(), err.Error()))
		log.Errorf("Error starting %s on %s: %s", sm.Name, sm.Address(), err.Error())

		hc.send(event.New(
			event.ServiceSensor,
			event.ServiceError,
			event.SeverityError,
			event.Service(sm.Name),
			event.Category(sm.Type),
			event.Error(err),
		))
		return false
	}

	hc.send(event.New(
		event.ServiceSensor,
		event.ServiceStarted,
		event.Service(sm.Name),
		event.Category(sm.Type),
		event.HostAddrFrom(l.Addr()),
	))

	log.Infof("%s honeypot running on port %d", sm.Name, sm.Port)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}

		l.Close()
	}()

	// paces retries of temporary accept failures, e.g. running out of
	// file descriptors
	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)

	var handlers sync.WaitGroup

	for {
		conn, err := l.Accept()
		if err == nil {
			handlers.Add(1)

			go func() {
				defer handlers.Done()

				hc.handle(ctx, sm, conn)
			}()
			continue
		}

		if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
			break
		}

		var ne net.Error
		if errors.As(err, &ne) && ne.Temporary() {
			log.Errorf("Error accepting connection on %s: %s", sm.Name, err.Error())

			if err := limiter.Wait(ctx); err != nil {
				break
			}

			continue
		}

		log.Errorf("Error accepting connection on %s, stopping: %s", sm.Name, err.Error())
		break
	}

	handlers.Wait()

	hc.send(event.New(
		event.ServiceSensor,
		event.ServiceEnded,
		event.Service(sm.Name),
		event.Category(sm.Type),
	))

	return true
}
