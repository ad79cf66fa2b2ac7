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
	"testing"
)

func TestParseService(t *testing.T) {
	tests := []struct {
		in   string
		name string
		port int
		err  error
	}{
		{"ssh:2222", "ssh", 2222, nil},
		{"ftp:21", "ftp", 21, nil},
		{"telnet:65535", "telnet", 65535, nil},
		{"ssh", "", 0, ErrInvalidService},
		{":22", "", 0, ErrInvalidService},
		{"ssh:abc", "", 0, ErrInvalidPort},
		{"ssh:0", "", 0, ErrInvalidPort},
		{"ssh:65536", "", 0, ErrInvalidPort},
	}

	for _, tt := range tests {
		s, err := ParseService(tt.in)
		if !errors.Is(err, tt.err) {
			t.Errorf("%s: expected error %v, got %v", tt.in, tt.err, err)
			continue
		}

		if err != nil {
			continue
		}

		if s.Name != tt.name || s.Type != tt.name || s.Port != tt.port {
			t.Errorf("%s: got %+v", tt.in, s)
		}
	}
}

func TestParseServices(t *testing.T) {
	services, err := ParseServices([]string{"ssh:2222", "ftp:2121", "telnet:2323"})
	if err != nil {
		t.Fatal(err)
	}

	if len(services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(services))
	}

	if _, err := ParseServices([]string{"ssh:2222", "bogus"}); !errors.Is(err, ErrInvalidService) {
		t.Errorf("expected ErrInvalidService, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		services []Service
		err      error
	}{
		{[]Service{{Name: "ssh", Port: 22}, {Name: "ftp", Port: 21}}, nil},
		{[]Service{}, nil},
		{[]Service{{Name: "ssh", Port: 0}}, ErrInvalidPort},
		{[]Service{{Name: "ssh", Port: 70000}}, ErrInvalidPort},
		{[]Service{{Name: "ssh", Port: 22}, {Name: "ftp", Port: 22}}, ErrDuplicatePort},
		{[]Service{{Name: "ssh", Port: 22}, {Name: "ssh", Port: 2222}}, ErrDuplicateName},
	}

	for i, tt := range tests {
		if err := Validate(tt.services); !errors.Is(err, tt.err) {
			t.Errorf("%d: expected %v, got %v", i, tt.err, err)
		}
	}
}

func TestMerge(t *testing.T) {
	base := []Service{
		{Name: "ssh", Type: "ssh", Port: 22},
		{Name: "ftp", Type: "ftp", Port: 21},
	}

	merged := Merge(base, Service{Name: "ssh", Type: "ssh", Port: 2222}, Service{Name: "telnet", Type: "telnet", Port: 23})

	if len(merged) != 3 {
		t.Fatalf("expected 3 services, got %d", len(merged))
	}

	for _, s := range merged {
		if s.Name == "ssh" && s.Port != 2222 {
			t.Errorf("flag should replace configured ssh service, got port %d", s.Port)
		}
	}
}

func TestAddress(t *testing.T) {
	if got := (Service{Port: 21}).Address(); got != "0.0.0.0:21" {
		t.Errorf("got %s", got)
	}

	if got := (Service{Host: "::1", Port: 21}).Address(); got != "[::1]:21" {
		t.Errorf("got %s", got)
	}
}
