package revmodel

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeInvalidType          = "invalid_type"
	CodeNotNullable          = "not_nullable"
	CodeIllegalKey           = "illegal_key"
	CodeIllegalValue         = "illegal_value"
	CodeIncompatibleInstance = "incompatible_instance"
	CodeUnknownField         = "unknown_field"
	CodeReadOnly             = "read_only"
	CodeUnsupportedInput     = "unsupported_input"
	CodeOutOfRange           = "out_of_range"
	// Definition errors (schema construction time)
	CodeDefinition      = "definition"
	CodeReservedField   = "reserved_field"
	CodeMissingSubTypes = "missing_subtypes"
)

// Issue represents a single validation or definition failure.
type Issue struct {
	Path    string // JSON Pointer (for example: /users/tom/age).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type names, remediation.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"field":"age","got":"string"})
	// for i18n and logging.
	Params map[string]any
}

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /age: expected number
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Hint != "" {
			fmt.Fprintf(b, ": %s", it.Hint)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasCode reports whether any issue carries the given code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// prefixIssues rebases every issue path in err under base. Errors that are not
// Issues are converted into a single issue at base.
func prefixIssues(base string, err error) Issues {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: base, Code: CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case base == "" || base == "/":
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
