package validator

import (
	"strings"
)

// 1項目の検証結果。Reasonが空ならOK。
type Field struct {
	Name   string `json:"field"`
	Reason string `json:"reason"`
}

func (f Field) OK() bool { return f.Reason == "" }

func Ok(name string) Field { return Field{Name: name} }

func Invalid(name, reason string) Field { return Field{Name: name, Reason: reason} }

// 不正な項目の一覧
type Errors []Field

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e {
		parts = append(parts, f.Name+": "+f.Reason)
	}
	return "validation error: " + strings.Join(parts, ", ")
}

// NGの項目だけ集める。全部OKならnil。
func collect(fields ...Field) error {
	var errs Errors
	for _, f := range fields {
		if !f.OK() {
			errs = append(errs, f)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func required(name, v string) Field {
	if strings.TrimSpace(v) == "" {
		return Invalid(name, "required")
	}
	return Ok(name)
}

func maxLen(name, v string, n int) Field {
	if len([]rune(v)) > n {
		return Invalid(name, "too long")
	}
	return Ok(name)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
