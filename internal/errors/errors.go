// Package errors wraps github.com/pkg/errors so call sites in this module
// never import it directly, mirroring the convention used throughout
// restic's command and backend layers.
package errors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// New, Errorf, WithStack, Wrap, Wrapf and Cause come straight from
// github.com/pkg/errors: WithStack/Wrap attach a stack trace the first
// time an error crosses a package boundary, Cause unwinds to the
// innermost error for comparison against sentinels.
var (
	New       = errors.New
	Errorf    = errors.Errorf
	WithStack = errors.WithStack
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
	Cause     = errors.Cause
)

// Is, As and Unwrap delegate to the standard library so callers can match
// sentinel errors through a Cause-wrapped chain.
var (
	Is     = stderrors.Is
	As     = stderrors.As
	Unwrap = stderrors.Unwrap
)
