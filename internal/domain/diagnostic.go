package domain

import (
	"fmt"
	"strings"
)

type DiagnosticKind int

const (
	DiagMalformedComment DiagnosticKind = iota
	DiagUnrecognizedMainElement
	DiagUnrecognizedNestedElement
	DiagAmbiguousInheritance
	DiagMissingReferenceTarget
)

var diagnosticKindNames = [...]string{
	DiagMalformedComment:          "malformed_comment",
	DiagUnrecognizedMainElement:   "unrecognized_main_element",
	DiagUnrecognizedNestedElement: "unrecognized_nested_element",
	DiagAmbiguousInheritance:      "ambiguous_inheritance",
	DiagMissingReferenceTarget:    "missing_reference_target",
}

func (k DiagnosticKind) String() string {
	if k < 0 || int(k) >= len(diagnosticKindNames) {
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
	return diagnosticKindNames[k]
}

func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *DiagnosticKind) UnmarshalText(b []byte) error {
	for i, name := range diagnosticKindNames {
		if name == string(b) {
			*k = DiagnosticKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind: %q", b)
}

type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityIgnore:
		return "ignore"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return SeverityIgnore, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityIgnore, fmt.Errorf("unknown severity: %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Severity, d.Kind, d.Message)
}

// Policy assigns a severity to each configurable diagnostic kind. Kinds
// missing from the policy are ignored.
type Policy map[DiagnosticKind]Severity

func (p Policy) Severity(kind DiagnosticKind) Severity {
	if p == nil {
		return SeverityIgnore
	}
	return p[kind]
}
