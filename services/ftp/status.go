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

package ftp

import "fmt"

// FTP status codes, defined in RFC 959
const (
	StatusReady      = 220
	StatusLoggedIn   = 230
	StatusUserOK     = 331
	StatusBadCommand = 500
)

var statusText = map[int]string{
	StatusReady:      "Welcome to FTP service.",
	StatusLoggedIn:   "Login successful.",
	StatusUserOK:     "Please specify the password.",
	StatusBadCommand: "Invalid command.",
}

// reply formats the response line for code.
func reply(code int) []byte {
	return []byte(fmt.Sprintf("%d %s\r\n", code, statusText[code]))
}
