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

// Package placerr defines the closed set of error kinds the placement
// core can return, per the error handling design of the selector spec.
// Every error the core itself produces is one of these kinds, wrapped
// with github.com/pkg/errors the way the rest of this module wraps
// collaborator and filesystem errors.
package placerr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the closed set of error kinds the placement core surfaces.
type Kind int

const (
	// Infeasible means no node set satisfies the request under current
	// occupancy.
	Infeasible Kind = iota
	// RequiredNodeUnusable means a node in the required-node bitmap was
	// filtered out or ended up with zero usable CPUs.
	RequiredNodeUnusable
	// InconsistentTopology means the caller-supplied node count disagreed
	// with the cluster's current node count, or a core index computed
	// during finalization overflowed the job's core bitmap.
	InconsistentTopology
	// DownstreamFailure means a collaborator (job-resources builder or
	// task distributor) reported an error.
	DownstreamFailure
	// BadMode means the call mode requires a partition association the
	// job does not have.
	BadMode
)

func (k Kind) String() string {
	switch k {
	case Infeasible:
		return "INFEASIBLE"
	case RequiredNodeUnusable:
		return "REQUIRED_NODE_UNUSABLE"
	case InconsistentTopology:
		return "INCONSISTENT_TOPOLOGY"
	case DownstreamFailure:
		return "DOWNSTREAM_FAILURE"
	case BadMode:
		return "BAD_MODE"
	default:
		return fmt.Sprintf("UNKNOWN_KIND(%d)", int(k))
	}
}

// Error is a placement-core error tagged with its Kind.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string {
	return e.kind.String() + ": " + e.err.Error()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// New constructs a Kind-tagged error from a format string, analogous to
// the teacher's policyError/rdtError helpers but carrying a machine
// checkable Kind alongside the message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{kind: kind, err: errors.Errorf(format, args...)}
}

// Wrap tags an existing error with a Kind, preserving it as the cause.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: kind, err: errors.Wrapf(err, format, args...)}
}

// Is reports whether err is a placement-core error of the given Kind.
func Is(err error, kind Kind) bool {
	var pe *Error
	if !stderrors.As(err, &pe) {
		return false
	}
	return pe.kind == kind
}
