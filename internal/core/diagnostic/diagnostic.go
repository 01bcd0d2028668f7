// Package diagnostic renders refgen failures in the
// "file(line,col): error CODE: message" form build tools pick up.
package diagnostic

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.trai.ch/zerr"

	"github.com/nightconcept/refgen-go/internal/core/domain"
)

// Severity is the diagnostic type word.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes.
const (
	CodeFailure                = "RG001"
	CodeClassicPortable        = "RG002"
	CodeUnknownTargetFramework = "RG003"
)

const (
	classicPortableMessage = "Classic PCL's, including Profile 259, cannot be updated on non-Windows Operating Systems. No changes have been made."
	unknownTargetMessage   = "TargetFrameworkName is not recognized as a PCL or package based framework. Specify the nuspec target framework instead of using 'auto'"
)

// Diagnostic is one reportable problem. Line and Column are 0 when unknown.
type Diagnostic struct {
	Severity Severity
	Code     string
	File     string
	Line     int
	Column   int
	Message  string
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		if d.Line > 0 {
			fmt.Fprintf(&b, "(%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&b, ",%d", d.Column)
			}
			b.WriteString(")")
		}
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s %s", d.Severity, d.Code)
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	return b.String()
}

// IsWarning reports whether d should leave the exit status at zero.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// FromError classifies err. Unsupported-platform failures become the RG002
// warning, unrecognized target frameworks RG003, everything else RG001.
// The path or project attached to the error, if any, is used as the file.
func FromError(err error) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Code: CodeFailure, Message: err.Error(), File: pathOf(err)}
	switch {
	case errors.Is(err, domain.ErrUnsupportedPlatform):
		d.Severity, d.Code, d.Message = SeverityWarning, CodeClassicPortable, classicPortableMessage
	case errors.Is(err, domain.ErrUnsupportedFramework):
		d.Code, d.Message = CodeUnknownTargetFramework, unknownTargetMessage
	}
	return d
}

var fileKeys = []string{"path", "project"}

// pathOf returns the first "path" attached along err's chain, falling back to
// the first "project".
func pathOf(err error) string {
	var metas []map[string]any
	for err != nil {
		var z *zerr.Error
		if !errors.As(err, &z) {
			break
		}
		metas = append(metas, z.Metadata())
		err = z.Unwrap()
	}
	for _, key := range fileKeys {
		for _, m := range metas {
			if p, ok := m[key].(string); ok {
				return p
			}
		}
	}
	return ""
}

var (
	warningColor = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Print writes d to w, colored by severity when color output is enabled.
func Print(w io.Writer, d Diagnostic) {
	line := d.String()
	if d.IsWarning() {
		line = warningColor(line)
	} else {
		line = errorColor(line)
	}
	_, _ = fmt.Fprintln(w, line)
}
