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

package splunk

import (
	"crypto/tls"
	"errors"
	"net/url"
)

var (
	ErrEndpointsNotSet = errors.New("splunk channel: endpoints not set")
	ErrTokenNotSet     = errors.New("splunk channel: token not set")
)

// Config holds the HEC endpoints and token of a splunk channel.
type Config struct {
	Endpoints []string
	Token     string

	tlsConfig *tls.Config
}

// UnmarshalTOML deserializes the channel table into the config.
func (c *Config) UnmarshalTOML(p interface{}) error {
	c.tlsConfig = &tls.Config{}

	data, _ := p.(map[string]interface{})

	v, ok := data["endpoints"].([]interface{})
	if !ok {
		return ErrEndpointsNotSet
	}

	for _, e := range v {
		s, ok := e.(string)
		if !ok {
			continue
		}

		u, err := url.Parse(s)
		if err != nil {
			return err
		}

		c.Endpoints = append(c.Endpoints, u.String())
	}

	if len(c.Endpoints) == 0 {
		return ErrEndpointsNotSet
	}

	token, ok := data["token"].(string)
	if !ok || token == "" {
		return ErrTokenNotSet
	}

	c.Token = token

	if verify, ok := data["verify"].(bool); ok {
		c.tlsConfig.InsecureSkipVerify = !verify
	}

	return nil
}
