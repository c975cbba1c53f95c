// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

//go:build !amd64

package source

import (
	"runtime"

	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
)

const instructionSupported = false

func execute(leaf, subleaf uint32) (cpuid.RawLeaf, error) {
	return cpuid.RawLeaf{}, &cpuid.QueryFailure{Leaf: leaf, Subleaf: subleaf, Err: errors.Errorf("cpuid instruction not available on %s", runtime.GOARCH)}
}
