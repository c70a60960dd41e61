// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Raw configuration keys.
const (
	keyMaxQueueSize   = "max_queue_size"
	keyWorkerCount    = "worker_count"
	keyRaiseOnFailure = "raise_on_failure"
	keyEndpointConfig = "endpoint_config"

	keyAuthToken             = "auth_token"
	keyIdentifyNearbyObjects = "identify_nearby_objects"

	keyRemoteEndpoint = "remote_endpoint"
	keyHTTPEndpoint   = "http_endpoint"
)

// Each allow-list maps an accepted key to its canonical name. The aliases
// are the names used by older pipeline configs.
var (
	workerPoolKeys = map[string]string{
		keyMaxQueueSize:   keyMaxQueueSize,
		keyWorkerCount:    keyWorkerCount,
		"n_workers":       keyWorkerCount,
		keyRaiseOnFailure: keyRaiseOnFailure,
		keyEndpointConfig: keyEndpointConfig,
		"pdfium_config":   keyEndpointConfig,
	}

	endpointConfigKeys = map[string]string{
		keyAuthToken:             keyAuthToken,
		keyIdentifyNearbyObjects: keyIdentifyNearbyObjects,
		Cached.key():             Cached.key(),
		Deplot.key():             Deplot.key(),
		Paddle.key():             Paddle.key(),
		Yolox.key():              Yolox.key(),
	}

	endpointPairKeys = map[string]string{
		keyRemoteEndpoint: keyRemoteEndpoint,
		keyHTTPEndpoint:   keyHTTPEndpoint,
	}
)

// checkSchema rejects unknown keys at every level before any value is
// coerced. Values of the wrong shape are skipped here and reported by the
// coercion pass.
func checkSchema(raw map[string]any) error {
	fields, err := closedFields("", raw, workerPoolKeys)
	if err != nil {
		return err
	}
	ecRaw, ok := fields[keyEndpointConfig]
	if !ok || ecRaw == nil {
		return nil
	}
	ec, err := asMapping(keyEndpointConfig, ecRaw)
	if err != nil {
		return nil
	}
	ecFields, err := closedFields(keyEndpointConfig+".", ec, endpointConfigKeys)
	if err != nil {
		return err
	}
	for _, s := range Services() {
		path := keyEndpointConfig + "." + s.key()
		if m, err := asMapping(path, ecFields[s.key()]); err == nil {
			if _, err := closedFields(path+".", m, endpointPairKeys); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseWorkerPool(raw map[string]any) (*WorkerPoolConfig, error) {
	if err := checkSchema(raw); err != nil {
		return nil, err
	}
	fields, err := closedFields("", raw, workerPoolKeys)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	if v, ok := fields[keyMaxQueueSize]; ok {
		if cfg.MaxQueueSize, err = coerceInt(keyMaxQueueSize, v); err != nil {
			return nil, err
		}
	}
	if v, ok := fields[keyWorkerCount]; ok {
		if cfg.WorkerCount, err = coerceInt(keyWorkerCount, v); err != nil {
			return nil, err
		}
	}
	if v, ok := fields[keyRaiseOnFailure]; ok {
		if cfg.RaiseOnFailure, err = coerceBool(keyRaiseOnFailure, v); err != nil {
			return nil, err
		}
	}
	if v, ok := fields[keyEndpointConfig]; ok && v != nil {
		if cfg.EndpointConfig, err = parseEndpointConfig(keyEndpointConfig, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func parseEndpointConfig(path string, v any) (*EndpointConfig, error) {
	m, err := asMapping(path, v)
	if err != nil {
		return nil, err
	}
	fields, err := closedFields(path+".", m, endpointConfigKeys)
	if err != nil {
		return nil, err
	}

	ec := &EndpointConfig{}
	if v, ok := fields[keyAuthToken]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, newValidationError(ErrTypeCoercion, path+"."+keyAuthToken, v, "expected string, got %T", v)
		}
		ec.AuthToken = s
	}
	if v, ok := fields[keyIdentifyNearbyObjects]; ok {
		if ec.IdentifyNearbyObjects, err = coerceBool(path+"."+keyIdentifyNearbyObjects, v); err != nil {
			return nil, err
		}
	}
	for _, s := range Services() {
		v, ok := fields[s.key()]
		if !ok {
			continue
		}
		pair, err := parseEndpointPair(path+"."+s.key(), s, v)
		if err != nil {
			return nil, err
		}
		*ec.slot(s) = pair
	}
	return ec, nil
}

// parseEndpointPair accepts a [remote, http] sequence, a mapping with
// remote_endpoint/http_endpoint keys, or null.
func parseEndpointPair(path string, s Service, v any) (*EndpointPair, error) {
	remote, http, err := pairValues(path, v)
	if err != nil {
		return nil, err
	}

	pair := &EndpointPair{}
	if pair.RemoteEndpoint, err = coerceAddress(path+"[0]", remote); err != nil {
		return nil, err
	}
	if pair.HTTPEndpoint, err = coerceAddress(path+"[1]", http); err != nil {
		return nil, err
	}
	if !pair.HasRemote() && !pair.HasHTTP() {
		return nil, unreachableError(path, string(s))
	}
	return pair, nil
}

func pairValues(path string, v any) (remote, http any, err error) {
	switch p := v.(type) {
	case nil:
		return nil, nil, nil
	case [2]string:
		return p[0], p[1], nil
	case []string:
		if len(p) == 2 {
			return p[0], p[1], nil
		}
	case []any:
		if len(p) == 2 {
			return p[0], p[1], nil
		}
	default:
		if m, merr := asMapping(path, v); merr == nil {
			fields, err := closedFields(path+".", m, endpointPairKeys)
			if err != nil {
				return nil, nil, err
			}
			return fields[keyRemoteEndpoint], fields[keyHTTPEndpoint], nil
		}
	}
	return nil, nil, newValidationError(ErrTypeCoercion, path, v,
		"expected a [grpc, http] pair, got %s", describe(v))
}

func coerceAddress(path string, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return NormalizeAddress(s), nil
	}
	return "", newValidationError(ErrTypeCoercion, path, v, "expected string, got %T", v)
}

// closedFields rejects keys outside allowed and returns the fields keyed by
// their canonical names. Keys are visited in sorted order so the reported
// violation does not depend on map iteration.
func closedFields(prefix string, raw map[string]any, allowed map[string]string) (map[string]any, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make(map[string]any, len(raw))
	seen := make(map[string]string, len(raw))
	for _, k := range keys {
		canonical, ok := allowed[k]
		if !ok {
			return nil, newValidationError(ErrSchemaViolation, prefix+k, raw[k], "extra fields not permitted")
		}
		if prev, dup := seen[canonical]; dup {
			return nil, newValidationError(ErrSchemaViolation, prefix+k, raw[k], "duplicates %q", prev)
		}
		seen[canonical] = k
		fields[canonical] = raw[k]
	}
	return fields, nil
}

func asMapping(path string, v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, newValidationError(ErrTypeCoercion, path, v, "mapping key %v is not a string", k)
			}
			out[ks] = val
		}
		return out, nil
	}
	return nil, newValidationError(ErrTypeCoercion, path, v, "expected a mapping, got %s", describe(v))
}

func coerceInt(path string, v any) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n := rv.Uint(); n <= math.MaxInt {
			return int(n), nil
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == math.Trunc(f) && f >= math.MinInt && f < math.MaxInt {
			return int(f), nil
		}
	case reflect.String:
		if n, err := strconv.Atoi(strings.TrimSpace(rv.String())); err == nil {
			return n, nil
		}
	}
	return 0, newValidationError(ErrTypeCoercion, path, v, "value is not a valid integer: %s", describe(v))
}

func coerceBool(path string, v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, nil
		}
	}
	return false, newValidationError(ErrTypeCoercion, path, v, "value could not be parsed to a boolean: %s", describe(v))
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}
