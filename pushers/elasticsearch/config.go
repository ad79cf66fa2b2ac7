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

package elasticsearch

import (
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	elastic "gopkg.in/olivere/elastic.v5"
)

var (
	// ErrElasticsearchNoURL is returned when no url has been configured.
	ErrElasticsearchNoURL = errors.New("elasticsearch channel: url not set")
	// ErrElasticsearchNoIndex is returned when the url has no path naming the index.
	ErrElasticsearchNoIndex = errors.New("elasticsearch channel: index not set")
)

// Config holds the client options of an elasticsearch channel. The index is
// taken from the path of the url, e.g. http://127.0.0.1:9200/honeypot.
type Config struct {
	options []elastic.ClientOptionFunc

	URL                *url.URL
	InsecureSkipVerify bool
	Sniff              bool

	index string
}

// UnmarshalTOML deserializes the channel table into the config.
func (c *Config) UnmarshalTOML(p interface{}) error {
	c.options = []elastic.ClientOptionFunc{
		elastic.SetRetrier(&Retrier{MaxRetries: 5}),
		elastic.SetHealthcheck(false),
	}

	data, _ := p.(map[string]interface{})

	s, ok := data["url"].(string)
	if !ok || s == "" {
		return ErrElasticsearchNoURL
	}

	u, err := url.Parse(s)
	if err != nil {
		return err
	}

	parts := strings.Split(u.Path, "/")
	if len(parts) != 2 || parts[1] == "" {
		return ErrElasticsearchNoIndex
	}

	c.index = parts[1]

	u.Path = ""
	c.URL = u

	c.options = append(c.options, elastic.SetURL(u.String()), elastic.SetScheme(u.Scheme))

	log.Debugf("Using URL: %s with index: %s", u.String(), c.index)

	username, uok := data["username"].(string)
	password, pok := data["password"].(string)
	if uok && pok {
		c.options = append(c.options, elastic.SetBasicAuth(username, password))

		log.Debugf("Using authentication with username: %s and password.", username)
	}

	if b, ok := data["insecure"].(bool); ok {
		c.InsecureSkipVerify = b
	}

	if b, ok := data["sniff"].(bool); ok {
		c.Sniff = b
	}

	c.options = append(c.options, elastic.SetSniff(c.Sniff))

	c.options = append(c.options, elastic.SetHttpClient(&http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 5,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: c.InsecureSkipVerify,
			},
		},
		Timeout: 20 * time.Second,
	}))

	return nil
}
