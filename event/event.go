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

package event

import (
	"encoding/hex"
	"fmt"
	"net"
	"runtime/debug"
)

// Event types produced by the honeypot.
var (
	ConnectionOpened = Type("CONNECTION:OPENED")
	DataReceived     = Type("DATA:RECEIVED")
	ConnectionClosed = Type("CONNECTION:CLOSED")

	ServiceStarted = Type("SERVICE:STARTED")
	ServiceError   = Type("SERVICE:ERROR")
	ServiceEnded   = Type("SERVICE:ENDED")

	SeverityFatal = severity("fatal")
	SeverityError = severity("error")
	SeverityInfo  = severity("info")
)

// Values of the type key, for matching received events.
const (
	TypeConnectionOpened = "CONNECTION:OPENED"
	TypeDataReceived     = "DATA:RECEIVED"
	TypeConnectionClosed = "CONNECTION:CLOSED"
	TypeServiceStarted   = "SERVICE:STARTED"
	TypeServiceError     = "SERVICE:ERROR"
	TypeServiceEnded     = "SERVICE:ENDED"
)

// Sensors.
var (
	ServiceSensor   = Sensor("SERVICE")
	SessionSensor   = Sensor("SESSIONS")
	HeartbeatSensor = Sensor("honeypot")
)

// Option defines a function type for events modifications.
type Option func(Event)

// Apply applies all options to the Event returning it after it's done.
func Apply(e Event, opts ...Option) Event {
	for _, option := range opts {
		if option == nil {
			continue
		}

		option(e)
	}

	return e
}

// NewWith combines the set of option into a single option which
// applies all the series when called.
func NewWith(opts ...Option) Option {
	return func(e Event) {
		Apply(e, opts...)
	}
}

// Token adds the provided token into the giving Event.
func Token(token string) Option {
	return func(m Event) {
		m.Store("token", token)
	}
}

// Category returns an option for setting the category value.
func Category(s string) Option {
	return func(m Event) {
		m.Store("category", s)
	}
}

// Error returns an option for setting the error value.
func Error(err error) Option {
	return func(m Event) {
		if err == nil {
			return
		}

		m.Store("error", err.Error())
	}
}

// Type returns an option for setting the type value.
func Type(s string) Option {
	return func(m Event) {
		m.Store("type", s)
	}
}

// severity returns an option for setting the severity value.
func severity(s string) Option {
	return func(m Event) {
		m.Store("severity", s)
	}
}

// Sensor returns an option for setting the sensor value.
func Sensor(s string) Option {
	return func(m Event) {
		m.Store("sensor", s)
	}
}

// SourceAddr returns an option for setting the source-ip value.
func SourceAddr(addr net.Addr) Option {
	return func(m Event) {
		if ta, ok := addr.(*net.TCPAddr); ok {
			m.Store("source-ip", ta.IP.String())
			m.Store("source-port", ta.Port)
		} else if addr != nil {
			m.Store("source-addr", addr.String())
		}
	}
}

// DestinationAddr returns an option for setting the destination-ip value.
func DestinationAddr(addr net.Addr) Option {
	return func(m Event) {
		if ta, ok := addr.(*net.TCPAddr); ok {
			m.Store("destination-ip", ta.IP.String())
			m.Store("destination-port", ta.Port)
		} else if addr != nil {
			m.Store("destination-addr", addr.String())
		}
	}
}

// HostAddrFrom returns an option for setting the host-addr value.
func HostAddrFrom(addr net.Addr) Option {
	return func(m Event) {
		m.Store("host-addr", addr.String())
	}
}

// Service sets the service of the event
func Service(v string) Option {
	return func(m Event) {
		m.Store("service", v)
	}
}

// SessionID sets the id correlating the events of one connection.
func SessionID(v string) Option {
	return func(m Event) {
		m.Store("session-id", v)
	}
}

// Message returns an option for setting the message value.
func Message(format string, a ...interface{}) Option {
	return func(m Event) {
		m.Store("message", fmt.Sprintf(format, a...))
	}
}

// Stack returns a stacktrace
func Stack() Option {
	return func(m Event) {
		data := debug.Stack()
		m.Store("stacktrace", string(data))
	}
}

// Payload returns an option for setting the payload value.
func Payload(data []byte) Option {
	return func(m Event) {
		m.Store("payload", string(data))
		m.Store("payload-hex", hex.EncodeToString(data))
		m.Store("payload-length", len(data))
	}
}

// Custom returns an option for setting the custom key-value pair.
func Custom(name string, value interface{}) Option {
	return func(m Event) {
		m.Store(name, value)
	}
}

// ToMap returns a map containing all available data which map
// a string key and value type.
func ToMap(ev Event) map[string]interface{} {
	mp := make(map[string]interface{})

	ev.Range(func(key, value interface{}) bool {
		if keyName, ok := key.(string); ok {
			mp[keyName] = value
		}
		return true
	})

	return mp
}
