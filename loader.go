// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"fmt"
	"os"
	"strings"

	"github.com/sassoftware/viya-ingest-xtract/logger"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override read by LoadConfig.
const EnvPrefix = "XTRACT_"

// LoadConfig reads a YAML or JSON config file, applies XTRACT_* environment
// overrides and validates the result. An empty path validates the
// environment overrides on top of the defaults.
func LoadConfig(path string) (*WorkerPoolConfig, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return ParseConfig(applyEnvOverrides(raw, os.LookupEnv))
}

// DecodeConfig validates an in-memory YAML or JSON document. Environment
// overrides are not applied.
func DecodeConfig(data []byte) (*WorkerPoolConfig, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return ParseConfig(raw)
}

func decodeRaw(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// applyEnvOverrides returns a copy of raw with XTRACT_* variables written
// over the matching keys. Values stay strings so they are coerced like any
// other input. Numeric and boolean variables set to "" are ignored; an empty
// auth token or endpoint address variable clears that value.
func applyEnvOverrides(raw map[string]any, lookupEnv func(string) (string, bool)) map[string]any {
	out := make(map[string]any, len(raw)+3)
	for k, v := range raw {
		out[k] = v
	}

	for _, key := range []string{keyMaxQueueSize, keyWorkerCount, keyRaiseOnFailure} {
		if v, _ := lookupEnv(envName(key)); v != "" {
			setOverride(out, workerPoolKeys, key, v)
		}
	}

	ecKey, ecRaw := lookupCanonical(out, workerPoolKeys, keyEndpointConfig)
	ec, ok := copyMapping(ecRaw)
	if !ok {
		// leave malformed blocks for ParseConfig to reject
		return out
	}
	touched := false
	if v, ok := lookupEnv(envName(keyAuthToken)); ok {
		setOverride(ec, endpointConfigKeys, keyAuthToken, v)
		touched = true
	}
	if v, _ := lookupEnv(envName(keyIdentifyNearbyObjects)); v != "" {
		setOverride(ec, endpointConfigKeys, keyIdentifyNearbyObjects, v)
		touched = true
	}
	for _, s := range Services() {
		grpcAddr, grpcSet := lookupEnv(envName(string(s) + "_grpc_endpoint"))
		httpAddr, httpSet := lookupEnv(envName(string(s) + "_http_endpoint"))
		if !grpcSet && !httpSet {
			continue
		}
		remote, http, err := pairValues(s.key(), ec[s.key()])
		if err != nil {
			continue
		}
		if grpcSet {
			remote = grpcAddr
		}
		if httpSet {
			http = httpAddr
		}
		ec[s.key()] = []any{remote, http}
		touched = true
	}
	if touched {
		if ecKey == "" {
			ecKey = keyEndpointConfig
		}
		out[ecKey] = ec
		logger.Debug("Applied endpoint overrides from environment", true)
	}
	return out
}

func envName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// lookupCanonical finds the key, or an alias of it, present in m.
func lookupCanonical(m map[string]any, allowed map[string]string, canonical string) (string, any) {
	for k, v := range m {
		if allowed[k] == canonical {
			return k, v
		}
	}
	return "", nil
}

// setOverride writes v under whichever spelling of canonical m already uses.
func setOverride(m map[string]any, allowed map[string]string, canonical string, v any) {
	k, _ := lookupCanonical(m, allowed, canonical)
	if k == "" {
		k = canonical
	}
	m[k] = v
}

func copyMapping(v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}
	m, err := asMapping("", v)
	if err != nil {
		return nil, false
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out, true
}
