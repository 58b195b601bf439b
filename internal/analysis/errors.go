package analysis

import (
	"fmt"
	"strings"
)

// InvalidFieldError indicates a field name outside the set that is valid in
// the current context: the range table, or one case's abnormal fields.
type InvalidFieldError struct {
	Field string
	Valid []string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("abnormal item %q not in this data, valid items: [%s]", e.Field, strings.Join(e.Valid, ", "))
}

// CaseNotFoundError indicates the case id is not in the working collection.
type CaseNotFoundError struct {
	CaseID string
}

func (e *CaseNotFoundError) Error() string {
	return fmt.Sprintf("case %s not in the case list, please recheck case ids", e.CaseID)
}

// MissingRequiredArgumentError indicates a selector was called without a
// required argument.
type MissingRequiredArgumentError struct {
	Argument string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("%s is required", e.Argument)
}
