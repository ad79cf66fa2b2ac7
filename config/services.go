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

package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrInvalidService is returned for a service flag not in name:port form.
	ErrInvalidService = errors.New("service should be in name:port form")
	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("port should be between 1 and 65535")
	// ErrDuplicatePort is returned when two services share a port.
	ErrDuplicatePort = errors.New("port already used by another service")
	// ErrDuplicateName is returned when two services share a name.
	ErrDuplicateName = errors.New("service name already used")
)

const (
	// DefaultHost is the address services bind to when no host is configured.
	DefaultHost = "0.0.0.0"

	// DefaultListener is the listener type used when none is configured.
	DefaultListener = "socket"
)

// Service is a single emulated service. Type selects the emulator and
// defaults to Name.
type Service struct {
	Name string `toml:"-"`
	Type string `toml:"type"`
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// Listener selects the listener type, KeepAlive its tcp keep-alive
	// period. Zero keeps the listener's default.
	Listener  string `toml:"listener"`
	KeepAlive Delay  `toml:"keep-alive"`

	// Options is the service's own table, decoded by its emulator.
	Options *toml.Primitive `toml:"-"`
}

// Address returns the host:port the service binds to.
func (s Service) Address() string {
	host := s.Host
	if host == "" {
		host = DefaultHost
	}

	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

func (s Service) String() string {
	return fmt.Sprintf("%s (%s) on %s", s.Name, s.Type, s.Address())
}

// ParseService parses a name:port flag value.
func ParseService(s string) (Service, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return Service{}, fmt.Errorf("%q: %w", s, ErrInvalidService)
	}

	name := s[:i]

	port, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Service{}, fmt.Errorf("%q: %w", s, ErrInvalidPort)
	}

	if port < 1 || port > 65535 {
		return Service{}, fmt.Errorf("%q: %w", s, ErrInvalidPort)
	}

	return Service{
		Name: name,
		Type: name,
		Port: port,
	}, nil
}

// ParseServices parses a list of name:port flag values.
func ParseServices(values []string) ([]Service, error) {
	services := []Service{}

	for _, v := range values {
		s, err := ParseService(v)
		if err != nil {
			return nil, err
		}

		services = append(services, s)
	}

	return services, nil
}

// Services decodes the [service.<name>] tables, sorted by name.
func (c *Config) Services() ([]Service, error) {
	names := []string{}
	for name := range c.Service {
		names = append(names, name)
	}

	sort.Strings(names)

	services := []Service{}
	for _, name := range names {
		primitive := c.Service[name]

		s := Service{
			Name:    name,
			Options: &primitive,
		}

		if err := c.PrimitiveDecode(primitive, &s); err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}

		if s.Type == "" {
			s.Type = name
		}

		services = append(services, s)
	}

	return services, nil
}

// Merge returns base with the services of extra added, replacing services
// of the same name.
func Merge(base []Service, extra ...Service) []Service {
	merged := []Service{}

	for _, s := range base {
		replaced := false
		for _, e := range extra {
			if e.Name == s.Name {
				replaced = true
				break
			}
		}

		if !replaced {
			merged = append(merged, s)
		}
	}

	return append(merged, extra...)
}

// Validate checks port ranges and that names and ports are unique.
func Validate(services []Service) error {
	names := map[string]bool{}
	ports := map[int]string{}

	for _, s := range services {
		if s.Port < 1 || s.Port > 65535 {
			return fmt.Errorf("service %s: port %d: %w", s.Name, s.Port, ErrInvalidPort)
		}

		if names[s.Name] {
			return fmt.Errorf("service %s: %w", s.Name, ErrDuplicateName)
		}

		names[s.Name] = true

		if other, ok := ports[s.Port]; ok {
			return fmt.Errorf("service %s: port %d used by %s: %w", s.Name, s.Port, other, ErrDuplicatePort)
		}

		ports[s.Port] = s.Name
	}

	return nil
}
