// Package conandeps bridges the Conan C/C++ package manager (version 2.x)
// into a native Go build pipeline.
//
// It invokes "conan install" for the project's recipe, captures the JSON
// dependency report, and turns the per-package cpp_info metadata into the
// directive lines the host build pipeline consumes, so that a project can
// link against C/C++ libraries without hand-written flags:
//
//	run, err := conan.New().Build("missing").Run(ctx)
//	if err != nil {
//		return err
//	}
//	set, err := run.Parse()
//	if err != nil {
//		return err
//	}
//	set.Emit(os.Stdout)
//
// The conan executable is assumed to be named "conan" unless the CONAN
// environment variable overrides it.
//
// This package holds the error taxonomy shared by the conan, cppinfo and
// directive packages.
package conandeps

import (
	"errors"
	"fmt"
)

// Error kinds, one per pipeline stage that can fail. Callers can tell a
// bad configuration from a failed tool run from an unreadable report with
// errors.Is.
var (
	// ErrConfig indicates malformed settings detected before invocation.
	ErrConfig = errors.New("invalid configuration")

	// ErrInvoke indicates the conan executable could not be run or
	// exited with a non-zero status.
	ErrInvoke = errors.New("conan invocation failed")

	// ErrParse indicates the captured dependency report is structurally
	// malformed.
	ErrParse = errors.New("malformed dependency report")

	// ErrEmit indicates the directive lines could not be written.
	ErrEmit = errors.New("directive emission failed")
)

// Error ties a failure to the pipeline stage that produced it.
type Error struct {
	Op   string // operation that failed, e.g. "conan install"
	Kind error  // one of the Err* sentinels above
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
