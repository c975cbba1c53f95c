package check

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"

	"cpuid/internal/cpuid"

	"github.com/casbin/govaluate"
	"github.com/pkg/errors"
)

// parameters are the variables an expression can reference. Every known feature name is
// present, true when the capture reports it.
func parameters(c *cpuid.Capture) map[string]any {
	params := make(map[string]any)
	for _, name := range cpuid.KnownFeatureNames() {
		params[name] = false
	}
	for _, f := range c.Features() {
		params[f.Name] = true
	}
	sig := c.Signature()
	params["vendor"] = c.Vendor().String()
	params["family"] = float64(sig.Family)
	params["model"] = float64(sig.Model)
	params["stepping"] = float64(sig.Stepping)
	params["l1d_kb"] = cacheKB(c, 1, cpuid.CacheData)
	params["l1i_kb"] = cacheKB(c, 1, cpuid.CacheInstruction)
	params["l2_kb"] = cacheKB(c, 2, cpuid.CacheUnified)
	params["l3_kb"] = cacheKB(c, 3, cpuid.CacheUnified)
	params["logical_per_core"] = float64(logicalPerCore(c))
	sizes := c.AddressSizes()
	params["phys_addr_bits"] = float64(sizes.Physical)
	params["virt_addr_bits"] = float64(sizes.Linear)
	return params
}

func cacheKB(c *cpuid.Capture, level int, typ cpuid.CacheType) float64 {
	if cache, ok := c.Cache(level, typ); ok {
		return float64(cache.Size) / 1024
	}
	return 0
}

// logicalPerCore is the SMT level's logical processor count, or 1 when the topology leaves
// report no SMT level.
func logicalPerCore(c *cpuid.Capture) int {
	for _, level := range c.Topology() {
		if level.Type == cpuid.TopologySMT {
			return level.LogicalCount
		}
	}
	return 1
}

// evaluatorFunctions are the functions callable from check expressions. has("AVX512-FP16")
// is an alternative to bracketed parameter names.
func evaluatorFunctions(features map[string]bool) map[string]govaluate.ExpressionFunction {
	functions := make(map[string]govaluate.ExpressionFunction)
	functions["has"] = func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("has takes one feature name, got %d arguments", len(args))
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("has takes a string, got %v", args[0])
		}
		return features[name], nil
	}
	return functions
}

// newExpression parses expression with has() bound to features.
func newExpression(expression string, features map[string]bool) (*govaluate.EvaluableExpression, error) {
	evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(expression, evaluatorFunctions(features))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid expression %q", expression)
	}
	return evaluable, nil
}

// function to call evaluator so that we can catch panics that come from the evaluator
func evaluateExpression(expression *govaluate.EvaluableExpression, params map[string]any) (result any, err error) {
	defer func() {
		if errx := recover(); errx != nil {
			err = fmt.Errorf("%v", errx)
		}
	}()
	if result, err = expression.Evaluate(params); err != nil {
		err = fmt.Errorf("%v : %s", err, expression.String())
	}
	return
}
