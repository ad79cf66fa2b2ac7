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

package services

import (
	"bytes"
	"errors"
	"strings"

	"github.com/cbk914/simple-honeypot/event"
)

var (
	_ = Register("ssh", SSH)
)

// DefaultSSHBanner is the identification string sent to ssh clients.
const DefaultSSHBanner = "SSH-2.0-OpenSSH_7.6p1 Ubuntu-4ubuntu0.5"

// SSH sends an identification string and records the client's, without
// ever starting a key exchange.
func SSH(options ...ServicerFunc) (Servicer, error) {
	s := &sshService{
		Banner: DefaultSSHBanner,
	}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	s.Banner = strings.TrimRight(s.Banner, "\r\n")

	if !strings.HasPrefix(s.Banner, "SSH-") {
		return nil, errors.New("ssh banner should start with SSH-")
	}

	if strings.ContainsAny(s.Banner, "\r\n") {
		return nil, errors.New("ssh banner should be a single line")
	}

	return s, nil
}

type sshService struct {
	Banner string `toml:"banner"`
}

func (s *sshService) Emulate() Emulator {
	return &sshEmulator{
		banner: []byte(s.Banner + "\r\n"),
	}
}

type sshEmulator struct {
	banner []byte

	identified bool
}

func (e *sshEmulator) Open() []byte {
	return e.banner
}

// Data never replies. The first chunk starting with an identification
// string is annotated with the client's version, binary key exchange data
// following it in the same chunk is ignored.
func (e *sshEmulator) Data(p []byte) ([]byte, []event.Option) {
	if e.identified {
		return nil, nil
	}

	line := p
	if i := bytes.IndexByte(p, '\n'); i >= 0 {
		line = p[:i]
	}

	line = bytes.TrimRight(line, "\r")

	if !bytes.HasPrefix(line, []byte("SSH-")) {
		return nil, nil
	}

	version := Text(line)
	if version == "" {
		return nil, nil
	}

	e.identified = true

	return nil, []event.Option{
		event.Custom("ssh.client-version", version),
	}
}

func (e *sshEmulator) State() State {
	return StateInitial
}
