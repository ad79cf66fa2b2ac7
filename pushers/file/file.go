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

package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	logging "github.com/op/go-logging"
)

var (
	_ = pushers.Register("file", New)
)

var (
	defaultMaxSize = int64(1024 * 1024 * 1024)
	flushSize      = 500 * 1024

	log = logging.MustGetLogger("simple-honeypot/channels/file")
)

// New returns a FileBackend writing JSON lines to the configured file.
func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	fc := FileBackend{
		FileConfig: FileConfig{
			MaxSize: defaultMaxSize,
			Mode:    os.FileMode(0600),
		},
		request: make(chan map[string]interface{}, 100),
		done:    make(chan struct{}),
	}

	for _, optionFn := range options {
		if err := optionFn(&fc); err != nil {
			return nil, err
		}
	}

	if fc.File == "" {
		return nil, errors.New("file channel: filename not set")
	}

	if fc.MaxSize < 1024 {
		return nil, errors.New("file channel: minimal max size is 1024")
	}

	if !filepath.IsAbs(fc.File) {
		if pwd, err := os.Getwd(); err == nil {
			fc.File = filepath.Join(pwd, fc.File)
		}
	}

	dest, err := OpenRotateFile(fc.File, fc.Mode, fc.MaxSize)
	if err != nil {
		return nil, err
	}

	go fc.writeLoop(dest)

	return &fc, nil
}

// FileConfig defines the config used to setup the FileBackend.
type FileConfig struct {
	MaxSize int64       `toml:"maxsize"`
	File    string      `toml:"filename"`
	Mode    os.FileMode `toml:"mode"`
}

// FileBackend appends every event as a JSON line to a file. Once the file
// exceeds MaxSize it is renamed with a timestamp suffix and a new file is
// started.
type FileBackend struct {
	FileConfig

	request chan map[string]interface{}
	done    chan struct{}
}

// Close flushes buffered events and closes the file.
func (f *FileBackend) Close() error {
	close(f.request)
	<-f.done
	return nil
}

// Send queues the event for writing.
func (f *FileBackend) Send(e event.Event) {
	f.request <- event.ToMap(e)
}

func (f *FileBackend) writeLoop(dest *rotateFile) {
	defer close(f.done)
	defer dest.Close()

	var buf bytes.Buffer

	flush := func() {
		if buf.Len() == 0 {
			return
		}

		if _, err := io.Copy(dest, &buf); err != nil {
			log.Errorf("Failed to write events to %s: %s", f.File, err)
		}

		if err := dest.Sync(); err != nil {
			log.Errorf("Failed to sync %s: %s", f.File, err)
		}

		buf.Reset()
	}

	for {
		select {
		case req, ok := <-f.request:
			if !ok {
				flush()
				return
			}

			if err := json.NewEncoder(&buf).Encode(req); err != nil {
				log.Errorf("Failed to marshal event to JSON: %s", err)
				continue
			}

			if buf.Len() < flushSize {
				continue
			}
		case <-time.After(time.Second):
		}

		flush()
	}
}
