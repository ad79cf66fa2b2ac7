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

package eventbus

import (
	"sync"
	"testing"

	"github.com/cbk914/simple-honeypot/event"
)

type counter struct {
	sync.Mutex
	n int
}

func (c *counter) Send(event.Event) {
	c.Lock()
	defer c.Unlock()

	c.n++
}

func TestFanOut(t *testing.T) {
	bus := New()

	a, b := &counter{}, &counter{}
	if err := bus.Subscribe(a); err != nil {
		t.Fatal(err)
	}

	if err := bus.Subscribe(b); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Send(event.New())
		}()
	}

	wg.Wait()

	if a.n != 10 || b.n != 10 {
		t.Errorf("expected 10 events per subscriber, got %d and %d", a.n, b.n)
	}
}

func TestSubscribeNil(t *testing.T) {
	if err := New().Subscribe(nil); err != ErrNilChannel {
		t.Errorf("expected ErrNilChannel, got %v", err)
	}
}
