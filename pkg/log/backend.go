// Copyright 2019 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"strings"
)

// Backend can format and emit log messages. The default installed Backend
// is fmtBackend below; tests substitute their own with SetBackend.
type Backend interface {
	// Name returns the name of this backend.
	Name() string
	// Log emits a log message with the given severity, source, and
	// Printf-like arguments.
	Log(level Level, source string, format string, args ...interface{})
	// Block emits a multi-line log message, with an additional line prefix.
	Block(level Level, source string, prefix string, format string, args ...interface{})
}

// severity tags the default backend prefixes emitted messages with.
var severityTag = map[Level]string{
	LevelDebug: "D:",
	LevelInfo:  "I:",
	LevelWarn:  "W:",
	LevelError: "E:",
	LevelFatal: "FATAL:",
	LevelPanic: "PANIC:",
}

// fmtBackend is the default, synchronous fmt.Println-based Backend.
type fmtBackend struct{}

func newFmtBackend() Backend {
	return &fmtBackend{}
}

func (*fmtBackend) Name() string {
	return "fmt"
}

func (f *fmtBackend) Log(level Level, source, format string, args ...interface{}) {
	f.emit(level, source, "", fmt.Sprintf(format, args...))
}

func (f *fmtBackend) Block(level Level, source, prefix, format string, args ...interface{}) {
	f.emit(level, source, prefix, fmt.Sprintf(format, args...))
}

func (f *fmtBackend) emit(level Level, source, prefix, msg string) {
	tag := severityTag[level]
	for _, line := range strings.Split(msg, "\n") {
		if prefix == "" {
			fmt.Println(tag, "["+source+"]", line)
		} else {
			fmt.Println(tag, "["+source+"]", prefix, line)
		}
	}
}
