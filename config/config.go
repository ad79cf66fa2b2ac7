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

// Package config holds the honeypot configuration, loaded from a toml file.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	logging "github.com/op/go-logging"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var log = logging.MustGetLogger("simple-honeypot/config")

var format = logging.MustStringFormatter(
	"%{color}%{time:15:04:05.000} %{module} ▶ %{level:.4s} %{id:03x} %{message}%{color:reset}",
)

// Logging configures a single logging backend. Output is stdout, stderr or a
// file path; files are rotated once they reach MaxSize megabytes.
type Logging struct {
	Output string `toml:"output"`
	Level  string `toml:"level"`

	MaxSize    int  `toml:"max-size"`
	MaxBackups int  `toml:"max-backups"`
	MaxAge     int  `toml:"max-age"`
	Compress   bool `toml:"compress"`
}

// Config defines the central type where all configuration is umarhsalled to.
type Config struct {
	toml.MetaData

	IdleTimeout Delay  `toml:"idle-timeout"`
	Heartbeat   Delay  `toml:"heartbeat"`
	DataDir     string `toml:"data-dir"`

	Service  map[string]toml.Primitive `toml:"service"`
	Channels map[string]toml.Primitive `toml:"channel"`

	Filters []toml.Primitive `toml:"filter"`

	GeoIP struct {
		Database string `toml:"database"`
	} `toml:"geoip"`

	Logging []Logging `toml:"logging"`
}

// DefaultDataDir is used when neither the command line nor the
// configuration names a data dir.
const DefaultDataDir = "~/.simple-honeypot"

// Default Config defines the default Config to be used to set default values.
var Default = Config{
	Heartbeat: Delay(30 * time.Second),
}

// Load attempts to load the giving toml configuration.
func (c *Config) Load(r io.Reader) error {
	md, err := toml.DecodeReader(r, c)
	if err != nil {
		return err
	}

	c.MetaData = md

	return SetLogging(c.Logging...)
}

// SetLogging replaces the logging backends. Without any entry a stderr
// backend at INFO level is used.
func SetLogging(entries ...Logging) error {
	if len(entries) == 0 {
		entries = []Logging{
			{Output: "stderr", Level: "info"},
		}
	}

	var backends []logging.Backend
	for _, entry := range entries {
		var output io.Writer

		switch entry.Output {
		case "stdout":
			output = os.Stdout
		case "stderr", "":
			output = os.Stderr
		default:
			output = &lumberjack.Logger{
				Filename:   os.ExpandEnv(entry.Output),
				MaxSize:    entry.MaxSize,
				MaxBackups: entry.MaxBackups,
				MaxAge:     entry.MaxAge,
				Compress:   entry.Compress,
			}
		}

		level := logging.INFO
		if entry.Level != "" {
			var err error
			if level, err = logging.LogLevel(entry.Level); err != nil {
				return fmt.Errorf("logging %s: %w", entry.Output, err)
			}
		}

		backend := logging.NewLogBackend(output, "", 0)
		backendFormatter := logging.NewBackendFormatter(backend, format)
		backendLeveled := logging.AddModuleLevel(backendFormatter)
		backendLeveled.SetLevel(level, "")

		backends = append(backends, backendLeveled)
	}

	logging.SetBackend(backends...)
	return nil
}
