// Package types defines the records exchanged with callers of the analyzer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Length bounds for request fields, in characters.
const (
	MinPostingLength = 50
	MaxPostingLength = 50000
	MaxResumeLength  = 20000
)

var validate = validator.New()

// JobPosting is the posting to analyze, given as text or as a URL. Text wins
// when both are present.
type JobPosting struct {
	Text string `json:"text,omitempty" validate:"required_without=URL,omitempty,min=50,max=50000"`
	URL  string `json:"url,omitempty" validate:"required_without=Text,omitempty,max=2048"`
}

// AnalyzeRequest is a single analysis request.
type AnalyzeRequest struct {
	JobPosting JobPosting `json:"job_posting"`
	ResumeText *string    `json:"resume_text,omitempty" validate:"omitempty,max=20000"`
}

// Validate checks field presence and length bounds.
func (r *AnalyzeRequest) Validate() error {
	return validate.Struct(r)
}

// FieldError names the first offending field of a validation failure.
type FieldError struct {
	Field   string
	Message string
}

// DescribeValidation turns a validator error into a field name and a
// readable message.
func DescribeValidation(err error) FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return FieldError{Field: "request", Message: "invalid request"}
	}

	fe := validationErrors[0]
	field := jsonFieldName(fe.StructNamespace())
	switch fe.Tag() {
	case "required_without":
		return FieldError{Field: "job_posting", Message: "either text or url is required"}
	case "min":
		return FieldError{Field: field, Message: fmt.Sprintf("must be at least %s characters", fe.Param())}
	case "max":
		return FieldError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	default:
		return FieldError{Field: field, Message: fmt.Sprintf("failed %s validation", fe.Tag())}
	}
}

var jsonNames = map[string]string{
	"AnalyzeRequest.JobPosting.Text": "job_posting.text",
	"AnalyzeRequest.JobPosting.URL":  "job_posting.url",
	"AnalyzeRequest.ResumeText":      "resume_text",
}

func jsonFieldName(namespace string) string {
	if name, ok := jsonNames[namespace]; ok {
		return name
	}
	return namespace
}
