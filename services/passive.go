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

import "github.com/cbk914/simple-honeypot/event"

var (
	_ = Register("passive", Passive)
)

// Passive records what it receives and never answers.
func Passive(options ...ServicerFunc) (Servicer, error) {
	s := &passiveService{}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type passiveService struct{}

func (s *passiveService) Emulate() Emulator {
	return passiveEmulator{}
}

type passiveEmulator struct{}

func (passiveEmulator) Open() []byte { return nil }

func (passiveEmulator) Data(p []byte) ([]byte, []event.Option) { return nil, nil }

func (passiveEmulator) State() State { return StateInitial }
