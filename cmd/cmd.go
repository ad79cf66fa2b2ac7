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

// Package cmd holds the build information shared by the binaries.
package cmd

// Version defines the version number for the cli.
var Version = "0.1"

// CommitID is set at build time with
// -ldflags "-X github.com/cbk914/simple-honeypot/cmd.CommitID=...".
var CommitID = ""

// ShortCommitID is the abbreviated CommitID.
var ShortCommitID = ""

func init() {
	if len(CommitID) > 7 {
		ShortCommitID = CommitID[:7]
	} else {
		ShortCommitID = CommitID
	}
}

// HelpTemplate is the usage template of the binaries.
var HelpTemplate = `NAME:
{{.Name}} - {{.Usage}}

DESCRIPTION:
{{.Description}}

USAGE:
{{.Name}} {{if .Flags}}[flags] {{end}}command{{if .Flags}}{{end}} [arguments...]

COMMANDS:
	{{range .Commands}}{{join .Names ", "}}{{ "\t" }}{{.Usage}}
	{{end}}{{if .Flags}}
FLAGS:
	{{range .Flags}}{{.}}
	{{end}}{{end}}
VERSION:
` + Version +
	`{{ "\n"}}`
