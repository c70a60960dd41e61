// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/viya-ingest-xtract/logger"
)

const (
	DefaultMaxQueueSize = 1
	DefaultWorkerCount  = 16
)

// Service names an external model service used during PDF extraction.
type Service string

const (
	Cached Service = "cached"
	Deplot Service = "deplot"
	Paddle Service = "paddle"
	Yolox  Service = "yolox"
)

// Services lists every recognized service in a fixed order.
func Services() []Service {
	return []Service{Cached, Deplot, Paddle, Yolox}
}

// key is the configuration key holding the service's endpoint pair.
func (s Service) key() string {
	return string(s) + "_endpoints"
}

// EndpointPair is the dual-protocol address of one service. An empty string
// means the protocol is not offered.
type EndpointPair struct {
	RemoteEndpoint string `yaml:"remote_endpoint"`
	HTTPEndpoint   string `yaml:"http_endpoint"`
}

// reachableTag reports an EndpointPair whose addresses both normalize to
// nothing.
const reachableTag = "endpoint_reachable"

func validateEndpointPair(sl validator.StructLevel) {
	p := sl.Current().Interface().(EndpointPair)
	if NormalizeAddress(p.RemoteEndpoint) == "" && NormalizeAddress(p.HTTPEndpoint) == "" {
		sl.ReportError(p.RemoteEndpoint, "remote_endpoint", "RemoteEndpoint", reachableTag, "")
	}
}

func (p EndpointPair) HasRemote() bool { return p.RemoteEndpoint != "" }
func (p EndpointPair) HasHTTP() bool   { return p.HTTPEndpoint != "" }

// EndpointConfig declares the external services reachable by the extractor.
// A nil pair means the service was not declared.
type EndpointConfig struct {
	AuthToken string `yaml:"auth_token,omitempty"`

	Cached *EndpointPair `yaml:"cached_endpoints,omitempty"`
	Deplot *EndpointPair `yaml:"deplot_endpoints,omitempty"`
	Paddle *EndpointPair `yaml:"paddle_endpoints,omitempty"`
	Yolox  *EndpointPair `yaml:"yolox_endpoints,omitempty"`

	IdentifyNearbyObjects bool `yaml:"identify_nearby_objects"`
}

// NamedEndpoint pairs a declared service with its addresses.
type NamedEndpoint struct {
	Service Service
	EndpointPair
}

func (ec *EndpointConfig) slot(s Service) **EndpointPair {
	switch s {
	case Cached:
		return &ec.Cached
	case Deplot:
		return &ec.Deplot
	case Paddle:
		return &ec.Paddle
	case Yolox:
		return &ec.Yolox
	}
	return nil
}

// Endpoint returns the pair declared for s.
func (ec *EndpointConfig) Endpoint(s Service) (EndpointPair, bool) {
	if ec == nil {
		return EndpointPair{}, false
	}
	slot := ec.slot(s)
	if slot == nil || *slot == nil {
		return EndpointPair{}, false
	}
	return **slot, true
}

// Endpoints returns a fresh slice of the declared services.
func (ec *EndpointConfig) Endpoints() []NamedEndpoint {
	var out []NamedEndpoint
	for _, s := range Services() {
		if p, ok := ec.Endpoint(s); ok {
			out = append(out, NamedEndpoint{Service: s, EndpointPair: p})
		}
	}
	return out
}

// WorkerPoolConfig configures the PDF extraction worker pool.
type WorkerPoolConfig struct {
	MaxQueueSize   int             `yaml:"max_queue_size" validate:"min=1"`
	WorkerCount    int             `yaml:"worker_count" validate:"min=1"`
	RaiseOnFailure bool            `yaml:"raise_on_failure"`
	EndpointConfig *EndpointConfig `yaml:"endpoint_config,omitempty"`
}

func NewDefaultConfig() *WorkerPoolConfig {
	return &WorkerPoolConfig{
		MaxQueueSize:   DefaultMaxQueueSize,
		WorkerCount:    DefaultWorkerCount,
		RaiseOnFailure: false,
	}
}

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateEndpointPair, EndpointPair{})
	return v
}

// Validate checks the struct-level constraints of an already built config.
func (cfg *WorkerPoolConfig) Validate() error {
	logger.Debug("Validating WorkerPoolConfig Object")
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fromFieldError(verrs[0])
	}
	return err
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	path := fe.Namespace()
	// drop the root struct name
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}

	switch fe.Tag() {
	case reachableTag:
		pairPath := path
		if i := strings.LastIndexByte(path, '.'); i >= 0 {
			pairPath = path[:i]
		}
		key := pairPath[strings.LastIndexByte(pairPath, '.')+1:]
		return unreachableError(pairPath, strings.TrimSuffix(key, "_endpoints"))
	case "min":
		return newValidationError(ErrConstraintViolation, path, fe.Value(), "must be at least %s", fe.Param())
	default:
		return newValidationError(ErrConstraintViolation, path, fe.Value(), "failed %q check", fe.Tag())
	}
}

// ParseConfig builds a WorkerPoolConfig from an untyped mapping such as a
// decoded YAML or JSON document. Unknown keys, values that cannot be coerced,
// and declared endpoints without any usable address are rejected. Omitted
// fields take their defaults. The first violation is returned as a
// *ValidationError and no config is produced.
func ParseConfig(raw map[string]any) (*WorkerPoolConfig, error) {
	logger.Debug("Parsing worker pool config", "keys", len(raw), true)

	cfg, err := parseWorkerPool(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.Error("worker pool config rejected", "err", err)
		return nil, err
	}

	logger.Debug("Worker pool config accepted",
		"max_queue_size", cfg.MaxQueueSize,
		"worker_count", cfg.WorkerCount,
		"raise_on_failure", cfg.RaiseOnFailure, true)
	return cfg, nil
}
