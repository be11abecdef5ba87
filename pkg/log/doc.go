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

// Package log implements the leveled, per-source logger used throughout
// this module. Every package that logs obtains its own named Logger with
// NewLogger and never reaches for the standard library log package
// directly, so messages are always tagged with their originating source
// and debug logging can be toggled per source at runtime.
//
// Debug messages are off by default. The placement ladder in pkg/ladder
// turns them on only when its caller asks for diagnostics, so a normal
// placement call stays silent beyond info/warn/error.
package log
