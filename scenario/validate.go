// scenario/validate.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scenario

import (
	"fmt"
	"strings"
)

// errorLogger accumulates validation errors along with the path to the
// item that was being checked, so that all of a file's problems are
// reported at once.
type errorLogger struct {
	hierarchy []string
	errors    []string
}

func (e *errorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *errorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *errorLogger) ErrorString(s string, args ...any) {
	msg := fmt.Sprintf(s, args...)
	if len(e.hierarchy) > 0 {
		msg = strings.Join(e.hierarchy, " / ") + ": " + msg
	}
	e.errors = append(e.errors, msg)
}

func (e *errorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

// Err returns nil if no errors were logged and otherwise an error
// wrapping sentinel that lists all of them.
func (e *errorLogger) Err(sentinel error) error {
	if !e.HaveErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(e.errors, "; "))
}
