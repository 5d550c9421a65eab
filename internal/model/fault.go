package model

import (
	"errors"
	"fmt"
)

// FaultKind classifies failures surfaced to the user.
type FaultKind int

const (
	NoWorkspace FaultKind = iota + 1
	ToolNotInstalled
	ConfigSynthesisFailed
	ProcessTimeout
	ProcessFailed
	ParseError
	FileSystemError
	ManifestMissing
	ManifestWriteFailed
	Canceled
)

func (k FaultKind) String() string {
	switch k {
	case NoWorkspace:
		return "no workspace"
	case ToolNotInstalled:
		return "tool not installed"
	case ConfigSynthesisFailed:
		return "config synthesis failed"
	case ProcessTimeout:
		return "process timeout"
	case ProcessFailed:
		return "process failed"
	case ParseError:
		return "parse error"
	case FileSystemError:
		return "file system error"
	case ManifestMissing:
		return "manifest missing"
	case ManifestWriteFailed:
		return "manifest write failed"
	case Canceled:
		return "canceled"
	}
	return "unknown fault"
}

// Fault is an error with a kind. Two faults match under errors.Is when their
// kinds are equal, so the sentinels below can be used as targets.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func NewFault(kind FaultKind, op string, err error) *Fault {
	return &Fault{Kind: kind, Op: op, Err: err}
}

func (f *Fault) Error() string {
	switch {
	case f.Op != "" && f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	case f.Err != nil:
		return f.Err.Error()
	case f.Op != "":
		return fmt.Sprintf("%s: %s", f.Op, f.Kind)
	}
	return f.Kind.String()
}

func (f *Fault) Unwrap() error { return f.Err }

func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Kind == f.Kind
}

var (
	ErrNoWorkspace           = &Fault{Kind: NoWorkspace}
	ErrToolNotInstalled      = &Fault{Kind: ToolNotInstalled}
	ErrConfigSynthesisFailed = &Fault{Kind: ConfigSynthesisFailed}
	ErrProcessTimeout        = &Fault{Kind: ProcessTimeout}
	ErrProcessFailed         = &Fault{Kind: ProcessFailed}
	ErrParse                 = &Fault{Kind: ParseError}
	ErrFileSystem            = &Fault{Kind: FileSystemError}
	ErrManifestMissing       = &Fault{Kind: ManifestMissing}
	ErrManifestWriteFailed   = &Fault{Kind: ManifestWriteFailed}
	ErrCanceled              = &Fault{Kind: Canceled}
)

// KindOf returns the kind of the first Fault in err's chain, or 0.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}
