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

package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
)

func WithWriter(buf *bytes.Buffer) pushers.ChannelFunc {
	return func(c pushers.Channel) error {
		c.(*Console).Writer = buf
		return nil
	}
}

func TestConsoleSend(t *testing.T) {
	buf := &bytes.Buffer{}

	c, err := New(WithWriter(buf))
	if err != nil {
		t.Fatal(err)
	}

	c.Send(event.New(
		event.Sensor("services"),
		event.Category("ftp"),
		event.DataReceived,
		event.Custom("data", "USER root"),
		event.Payload([]byte("USER root\r\n")),
	))

	c.(*Console).Close()

	line := buf.String()
	if !strings.HasPrefix(line, "services > ftp > ") {
		t.Errorf("unexpected prefix: %q", line)
	}

	if !strings.Contains(line, "data=USER root") {
		t.Errorf("expected data in line: %q", line)
	}

	if strings.Contains(line, "payload-hex") {
		t.Errorf("payload-hex should not be printed: %q", line)
	}
}

func TestPrintify(t *testing.T) {
	if got := printify("a\x00b\xff"); got != `a\x00b\xff` {
		t.Errorf("got %q", got)
	}
}
