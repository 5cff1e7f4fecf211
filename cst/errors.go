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

package cst

import "fmt"

// Code is the numeric severity/identity of an Error. The range the value
// falls in determines its severity class; specific values within a range
// additionally identify the kind of diagnostic for programmatic matching.
type Code uint32

// Severity classifies a Code by the range it falls in.
type Severity int

const (
	// Notice indicates an informational diagnostic with no effect on the result.
	Notice Severity = iota
	// Warning indicates a diagnostic that does not by itself invalidate the parse.
	Warning
	// ErrorSeverity indicates a diagnostic that invalidates strict conformance.
	ErrorSeverity
	// Fatal indicates an internal-invariant violation; the tree may be unusable.
	Fatal
)

// Severity classification boundaries, preserved verbatim across
// implementations per spec §6.3: NOTICE < 100, WARNING < 1000, ERROR < 10000,
// FATAL >= 10000.
const (
	noticeCeiling  Code = 100
	warningCeiling Code = 1000
	errorCeiling   Code = 10000
)

// ClassOf returns the Severity class a Code belongs to.
func ClassOf(code Code) Severity {
	switch {
	case code < noticeCeiling:
		return Notice
	case code < warningCeiling:
		return Warning
	case code < errorCeiling:
		return ErrorSeverity
	default:
		return Fatal
	}
}

func (s Severity) String() string {
	switch s {
	case Notice:
		return "Notice"
	case Warning:
		return "Warning"
	case ErrorSeverity:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Named error codes used by the core. Values are chosen so that ClassOf
// reports the documented severity for each; exact numeric values are not
// otherwise significant, but must stay within their documented range for
// cross-implementation parity (spec §6.3).
const (
	ResumeNotice                     Code = 5
	ParserLookaheadFailureOnlyNotice Code = 10
	ParserLookaheadMatchOnlyNotice   Code = 15

	InfiniteLoopWarning              Code = 500
	RedundantParserWarning           Code = 505
	OptionalRedundantlyNestedWarning Code = 510
	LookaheadWithOptionalParser      Code = 515
	CaptureDropsContentWarning       Code = 520
	ZeroLengthCaptureWarning         Code = 525
	CaptureStackNotEmptyWarning      Code = 530
	ParserStoppedOnRetry             Code = 535

	MandatoryContinuation             Code = 1001
	MandatoryContinuationAtEOF        Code = 1002
	MandatoryContinuationAtEOFNonRoot Code = 1003
	ParserStoppedBeforeEnd            Code = 1010
	ParserNeverTouchesDocument        Code = 1020
	CaptureWithoutParserName          Code = 1030
	BadMandatorySetup                 Code = 1040
	BadRepetitionCount                Code = 1041
	DuplicateParsersInAlternative     Code = 1042
	BadOrderOfAlternatives            Code = 1043
	UndefinedRetrieve                 Code = 1044
	MalformedErrorString              Code = 1045
	CaptureStackNotEmptyError         Code = 1046
	BadlyNestedOptionalParser         Code = 1047

	RecursionDepthLimitHit        Code = 10001
	CustomParserFailure           Code = 10002
	ErrorWhileRecoveringFromError Code = 10003
)

// Error is a single diagnostic attached to the parse, keyed to a source
// Position. Line/Column are filled in by source mapping once the parse has
// finished (RootNode.ApplySourceMapping); they are zero beforehand.
type Error struct {
	Message string
	Position
	Code   Code
	Line   int
	Column int
	Length int
}

// Severity reports the severity class of this Error.
func (e Error) Severity() Severity { return ClassOf(e.Code) }

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Position, e.Message)
}

// ErrorList is a list of Error records in the order they were raised.
type ErrorList []Error

// MaxSeverity returns the most severe Severity present, or Notice if empty.
func (l ErrorList) MaxSeverity() Severity {
	max := Notice
	for _, e := range l {
		if s := e.Severity(); s > max {
			max = s
		}
	}
	return max
}

// HasErrors reports whether any Error in the list is at least ErrorSeverity.
func (l ErrorList) HasErrors() bool {
	return l.MaxSeverity() >= ErrorSeverity
}
