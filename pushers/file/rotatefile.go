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
	"fmt"
	"io"
	"os"
	"time"
)

// OpenRotateFile opens name for appending, rotating it first when it already
// holds maxSize bytes or more.
func OpenRotateFile(name string, mode os.FileMode, maxSize int64) (*rotateFile, error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY, mode)
	if err != nil {
		return nil, err
	}

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, err
	}

	rf := &rotateFile{
		f:       f,
		path:    name,
		pos:     offset,
		mode:    mode,
		maxSize: maxSize,
	}

	if offset < maxSize {
		return rf, nil
	} else if err := rf.rotate(); err != nil {
		return rf, err
	}

	return rf, nil
}

type rotateFile struct {
	f *os.File

	mode    os.FileMode
	path    string
	pos     int64
	maxSize int64

	rotations int
}

func (f *rotateFile) rotate() error {
	f.f.Sync()
	f.f.Close()

	// two rotations within the same second must not overwrite each other
	f.rotations++
	suffix := fmt.Sprintf("%s.%d", time.Now().Format("20060102150405"), f.rotations)

	if err := os.Rename(f.path, fmt.Sprintf("%s.%s", f.path, suffix)); err != nil {
		return err
	}

	return f.reopen()
}

func (f *rotateFile) reopen() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, f.mode)
	if err != nil {
		return err
	}

	f.f = file
	f.pos = 0
	return nil
}

// Write writes p, rotating on line boundaries whenever the file would grow
// past maxSize.
func (f *rotateFile) Write(p []byte) (int, error) {
	if _, err := os.Stat(f.path); err != nil {
		f.f.Close()

		if err := f.reopen(); err != nil {
			return 0, err
		}
	}

	written := 0

	for f.pos+int64(len(p)) > f.maxSize {
		room := f.maxSize - f.pos
		if room < 0 {
			room = 0
		} else if room > int64(len(p)) {
			room = int64(len(p))
		}

		j := bytes.LastIndexByte(p[:room], '\n')
		if j < 0 && f.pos == 0 {
			// a single line larger than maxSize goes out whole
			break
		}

		n, err := f.f.Write(p[:j+1])
		written += n
		if err != nil {
			return written, err
		}

		if err := f.rotate(); err != nil {
			return written, err
		}

		p = p[j+1:]
	}

	n, err := f.f.Write(p)

	f.pos += int64(n)
	return written + n, err
}

func (f *rotateFile) Close() error {
	return f.f.Close()
}

func (f *rotateFile) Sync() error {
	return f.f.Sync()
}
