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

// Package telnet emulates a telnet server that knows no commands.
package telnet

import (
	"strings"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/services"
)

var (
	_ = services.Register("telnet", Telnet)
)

var (
	motd     = "Welcome to Telnet service.\r\n"
	notFound = "Command not found.\r\n"
)

func Telnet(options ...services.ServicerFunc) (services.Servicer, error) {
	s := &telnetService{}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type telnetService struct{}

func (s *telnetService) Emulate() services.Emulator {
	return telnetEmulator{}
}

type telnetEmulator struct{}

func (telnetEmulator) Open() []byte {
	return []byte(motd)
}

// Data answers every chunk, including empty lines and option negotiation,
// with the same reply.
func (telnetEmulator) Data(p []byte) ([]byte, []event.Option) {
	return []byte(notFound), []event.Option{
		event.Custom("telnet.command", strings.TrimSpace(services.Text(p))),
	}
}

func (telnetEmulator) State() services.State {
	return services.StateInitial
}
