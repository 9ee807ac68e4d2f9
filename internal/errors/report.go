package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spy-lang/spy/internal/ast"
)

// Severity distinguishes a primary error annotation from a secondary
// explanatory note (e.g. "old declaration was here").
type Severity string

const (
	SeverityError Severity = "error"
	SeverityNote  Severity = "note"
)

// Annotation is one (severity, message, location) triple attached to a
// Report; the first is usually the offending span, later ones point at
// related context (e.g. a conflicting declaration).
type Annotation struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Loc      ast.Span  `json:"loc"`
}

// Report is the canonical structured error type for SPy: a Kind plus a
// primary message, an ordered list of Annotations, an optional
// app-level exception object (for errors raised by SPy code itself),
// and an optional traceback. Adapted from the teacher's
// internal/errors.Report.
type Report struct {
	Schema      string         `json:"schema"`
	Kind        Kind           `json:"kind"`
	Message     string         `json:"message"`
	Annotations []Annotation   `json:"annotations,omitempty"`
	Exception   interface{}    `json:"exception,omitempty"`
	Traceback   []string       `json:"traceback,omitempty"`
}

const schemaVersion = "spy.error/v1"

// New builds a bare Report with no annotations.
func New(kind Kind, format string, args ...interface{}) *Report {
	return &Report{Schema: schemaVersion, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Annotate appends an annotation and returns the Report, for chaining:
// errors.New(...).Annotate(...).Annotate(...).
func (r *Report) Annotate(sev Severity, loc ast.Span, format string, args ...interface{}) *Report {
	r.Annotations = append(r.Annotations, Annotation{Severity: sev, Message: fmt.Sprintf(format, args...), Loc: loc})
	return r
}

// WithException attaches the SPy-level exception value that produced
// this report (populated when the error originates from a `raise` in
// SPy source rather than from the evaluator itself).
func (r *Report) WithException(exc interface{}) *Report {
	r.Exception = exc
	return r
}

// WithTraceback attaches a captured call-stack trace.
func (r *Report) WithTraceback(frames []string) *Report {
	r.Traceback = frames
	return r
}

// reportErr wraps a *Report so it survives errors.As/errors.Is
// unwrapping while still satisfying the error interface.
type reportErr struct{ rep *Report }

func (e *reportErr) Error() string {
	if e.rep == nil {
		return "unknown error"
	}
	var b strings.Builder
	b.WriteString(string(e.rep.Kind))
	b.WriteString(": ")
	b.WriteString(e.rep.Message)
	for _, a := range e.rep.Annotations {
		fmt.Fprintf(&b, "\n  %s: %s (%s)", a.Severity, a.Message, a.Loc.Start.String())
	}
	return b.String()
}

// Wrap turns a Report into a plain error, preserving the structured
// value for later recovery via As.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &reportErr{rep: r}
}

// As extracts the *Report from an error chain produced by Wrap.
func As(err error) (*Report, bool) {
	var re *reportErr
	if errors.As(err, &re) {
		return re.rep, true
	}
	return nil, false
}

// ToJSON renders the Report as deterministic JSON. The CLI does not
// call it; its diagnostics are printed as text.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
