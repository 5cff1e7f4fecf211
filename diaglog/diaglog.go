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

// Package diaglog is the thin adapter between the parser core's tracer and
// error-recovery diagnostics and github.com/tliron/commonlog. The core never
// registers a logging backend itself (it has no cmd/ of its own); a host
// application that wants the breadcrumbs wires one up, the same way
// dhamidi-sai only blank-imports commonlog/simple from its own command, not
// from the library packages it's built on.
package diaglog

import "github.com/tliron/commonlog"

// Logger is the minimal surface the core needs: leveled, formatted logging.
// It is satisfied directly by commonlog.Logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// For returns a named Logger backed by commonlog. With no backend
// registered, commonlog discards everything, so this is always safe to call
// unconditionally.
func For(name string) Logger {
	return commonlog.GetLogger(name)
}

// discard is used where a Logger is required but the caller did not supply
// one (e.g. tracing disabled).
type discard struct{}

func (discard) Debugf(string, ...interface{})   {}
func (discard) Infof(string, ...interface{})    {}
func (discard) Warningf(string, ...interface{}) {}
func (discard) Errorf(string, ...interface{})   {}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}
