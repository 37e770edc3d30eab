package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures.
type ErrorKind string

const (
	ErrKindConfig   ErrorKind = "config"
	ErrKindProvider ErrorKind = "provider"
	ErrKindContent  ErrorKind = "content"
	ErrKindSchema   ErrorKind = "schema"
)

// ErrNoAPIKey is returned before any network call when no key resolves.
var ErrNoAPIKey = errors.New("no API key available: set OPENAI_API_KEY/OPENAI_PROJECT_KEY on the server or pass api_key in the request")

// AnalysisError is a classified failure of the LLM adapter.
type AnalysisError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func newAnalysisError(kind ErrorKind, msg string, err error) *AnalysisError {
	return &AnalysisError{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an AnalysisError.
func KindOf(err error) ErrorKind {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr.Kind
	}
	return ""
}
