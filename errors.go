// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"errors"
	"fmt"
)

// Validation failure kinds. A *ValidationError unwraps to one of these.
var (
	ErrSchemaViolation     = errors.New("schema violation")
	ErrTypeCoercion        = errors.New("type coercion failure")
	ErrEndpointUnreachable = errors.New("endpoint unreachable declaration")
)

// ErrConstraintViolation marks a value that coerced but is out of range. It
// wraps ErrTypeCoercion, since such a value cannot become its declared type.
var ErrConstraintViolation = fmt.Errorf("%w: constraint violation", ErrTypeCoercion)

// ValidationError reports the first violation found in a raw configuration.
type ValidationError struct {
	Kind    error
	Path    string // dotted field path, e.g. "endpoint_config.yolox_endpoints"
	Service string // set for ErrEndpointUnreachable
	Value   any
	Msg     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind.Error(), e.Path, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, path string, value any, format string, args ...any) *ValidationError {
	return &ValidationError{
		Kind:  kind,
		Path:  path,
		Value: value,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func unreachableError(path, service string) *ValidationError {
	err := newValidationError(ErrEndpointUnreachable, path, nil,
		"both gRPC and HTTP services cannot be empty for %s", service)
	err.Service = service
	return err
}
