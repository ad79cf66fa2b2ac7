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

// Package ftp emulates the login sequence of an FTP server.
package ftp

import (
	"strings"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/services"
)

var (
	_ = services.Register("ftp", FTP)
)

// FTP accepts any USER followed by any PASS.
func FTP(options ...services.ServicerFunc) (services.Servicer, error) {
	s := &ftpService{}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type ftpService struct{}

func (s *ftpService) Emulate() services.Emulator {
	return &ftpEmulator{
		state: services.StateInitial,
	}
}

// Step returns the reply to line in state, and the next state. Commands are
// matched case sensitively on the raw line.
func Step(state services.State, line string) ([]byte, services.State) {
	switch {
	case state == services.StateInitial && strings.HasPrefix(line, "USER"):
		return reply(StatusUserOK), services.StateUserReceived
	case state == services.StateUserReceived && strings.HasPrefix(line, "PASS"):
		return reply(StatusLoggedIn), services.StateAuthenticated
	default:
		return reply(StatusBadCommand), state
	}
}

type ftpEmulator struct {
	state services.State
}

func (e *ftpEmulator) Open() []byte {
	return reply(StatusReady)
}

func (e *ftpEmulator) Data(p []byte) ([]byte, []event.Option) {
	line := services.Text(p)

	previous := e.state

	var resp []byte
	resp, e.state = Step(e.state, line)

	options := []event.Option{
		event.Custom("ftp.command", strings.TrimSpace(line)),
	}

	if previous == e.state {
		return resp, options
	}

	// argument of the accepted USER or PASS
	arg := strings.TrimSpace(line[4:])

	switch e.state {
	case services.StateUserReceived:
		options = append(options, event.Custom("ftp.username", arg))
	case services.StateAuthenticated:
		options = append(options, event.Custom("ftp.password", arg))
	}

	return resp, options
}

func (e *ftpEmulator) State() services.State {
	return e.state
}
