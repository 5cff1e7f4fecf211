// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parse

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/google/dhparse/cst"
)

// ParserError is the "recoverable parse error" channel described by spec
// §7: a Series or Interleave that fails at or past its mandatory index
// raises one of these instead of a plain non-match. It travels as an
// explicit return value through parseImpl/ParseEntry rather than as a Go
// panic, so the surrounding parser can inspect and possibly recover from it
// (design note "Exception-for-recovery → explicit Result-carrying channel").
type ParserError struct {
	Err     cst.Error
	Partial *cst.Node // best-effort node built from what matched so far
	// Origin is the location Partial begins at: the raising parser's own
	// start on the first throw, moved outward to each catcher's start as
	// the error is re-thrown with the catcher's gap folded into Partial.
	Origin     cst.Position
	FirstThrow bool     // true only at the parser that originally raised it
	Stack      []string // call-stack breadcrumb, populated only when tracing is on
}

func (e *ParserError) Error() string {
	return e.Err.Message
}

// sentinel is a fault.Const-style named error constant: a plain string
// compared with ==, not a type to assert on, the same pattern
// google-gapid's core/fault package uses for its control-flow sentinels.
type sentinel string

func (s sentinel) Error() string { return string(s) }

const (
	// errForwardUnset is returned by a Forward parser invoked before Set.
	errForwardUnset sentinel = "parse: forward parser used before Set"
	// errRollbackUnknownLocation marks an internal invariant violation: a
	// rollback was requested for a location with no recorded deposit.
	errRollbackUnknownLocation sentinel = "parse: rollback requested for a location with no rollback entries"
)

// GrammarError is raised synchronously by Grammar construction (New) when
// static analysis (analyze.go) finds one or more error-level findings. It
// aggregates every finding collected during the pass, mirroring how the
// original implementation's Grammar.__init__ gathers every diagnostic
// before failing once, rather than stopping at the first problem.
type GrammarError struct {
	Findings []Finding
}

func (e *GrammarError) Error() string {
	if len(e.Findings) == 1 {
		return e.Findings[0].Message
	}
	return fmt.Sprintf("parse: grammar construction failed with %d findings (first: %s)",
		len(e.Findings), e.Findings[0].Message)
}

// newGrammarError wraps findings with a stack-capturing cause so a
// developer attaching a debugger at the construction call site gets a real
// stack rather than just the aggregated message.
func newGrammarError(findings []Finding) error {
	return errors.WithStack(&GrammarError{Findings: findings})
}
