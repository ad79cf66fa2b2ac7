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
	"bytes"
	"io/ioutil"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cbk914/simple-honeypot/config"
	"github.com/cbk914/simple-honeypot/pushers"
	"github.com/pkg/profile"
	"github.com/rs/xid"
)

type OptionFn func(*Honeytrap) error

// WithMemoryProfiler writes a memory profile to the data dir.
func WithMemoryProfiler() OptionFn {
	return func(b *Honeytrap) error {
		b.profileMode = profile.MemProfile
		return nil
	}
}

// WithCPUProfiler writes a cpu profile to the data dir.
func WithCPUProfiler() OptionFn {
	return func(b *Honeytrap) error {
		b.profileMode = profile.CPUProfile
		return nil
	}
}

// WithConfig loads the toml configuration file s.
func WithConfig(s string) (OptionFn, error) {
	data, err := ioutil.ReadFile(s)
	if err != nil {
		return nil, err
	}

	return func(b *Honeytrap) error {
		return b.config.Load(bytes.NewBuffer(data))
	}, nil
}

// WithServices adds services to the configured ones, replacing configured
// services of the same name.
func WithServices(services ...config.Service) OptionFn {
	return func(b *Honeytrap) error {
		b.extraServices = append(b.extraServices, services...)
		return nil
	}
}

// WithChannel subscribes channel to every event.
func WithChannel(channel pushers.Channel) OptionFn {
	return func(b *Honeytrap) error {
		b.extraChannels = append(b.extraChannels, channel)
		return nil
	}
}

// WithIdleTimeout closes sessions without input for d.
func WithIdleTimeout(d time.Duration) OptionFn {
	return func(b *Honeytrap) error {
		b.config.IdleTimeout = config.Delay(d)
		return nil
	}
}

// WithHeartbeat sets the heartbeat interval, zero disables it.
func WithHeartbeat(d time.Duration) OptionFn {
	return func(b *Honeytrap) error {
		b.config.Heartbeat = config.Delay(d)
		return nil
	}
}

// WithDataDir stores data in s. It takes precedence over the data-dir key of
// the configuration file.
func WithDataDir(s string) OptionFn {
	return func(b *Honeytrap) error {
		b.dataDir = s
		return nil
	}
}

// resolveDir expands ~ and creates the directory when missing.
func resolveDir(s string) (string, error) {
	p, err := expand(s)
	if err != nil {
		return "", err
	}

	p, err = filepath.Abs(p)
	if err != nil {
		return "", err
	}

	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		err = os.MkdirAll(p, 0755)
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	return p, nil
}

func expand(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, path[1:]), nil
}

// WithToken uses the token stored in the data dir, creating it on first
// use.
func WithToken() OptionFn {
	return func(h *Honeytrap) error {
		h.persistToken = true
		return nil
	}
}

func loadToken(dataDir string) (string, error) {
	uid := xid.New().String()

	p := path.Join(dataDir, "token")

	if _, err := os.Stat(p); os.IsNotExist(err) {
		if err := ioutil.WriteFile(p, []byte(uid), 0600); err != nil {
			return "", err
		}
	} else if err != nil {
		// other error
		return "", err
	} else if data, err := ioutil.ReadFile(p); err == nil {
		uid = strings.TrimSpace(string(data))
	} else {
		return "", err
	}

	return uid, nil
}
