/*
Package util includes path and processor list helpers shared by the commands.
*/
package util

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// AllCPUs selects every processor in a CPU list.
const AllCPUs = "all"

// AbsPath returns the absolute path after expanding a leading '~' to the user's home dir.
// Use everywhere in place of filepath.Abs()
func AbsPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}

// exists stats path and reports whether it is there. It returns an error when the path
// is there but is not of the wanted kind.
func exists(path string, isKind func(fs.FileMode) bool, kind string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if !isKind(info.Mode()) {
		return false, fmt.Errorf("%s not a %s", path, kind)
	}
	return true, nil
}

// FileExists checks if a regular file or a character device, e.g., a cpuid device, exists
// at the given path. A directory at path is an error.
func FileExists(path string) (bool, error) {
	return exists(path, func(m fs.FileMode) bool { return m.IsRegular() || m&fs.ModeCharDevice != 0 }, "file")
}

// DirectoryExists checks if the specified directory exists. A file at path is an error.
func DirectoryExists(path string) (bool, error) {
	return exists(path, fs.FileMode.IsDir, "directory")
}

// CreateDirectoryIfNotExists creates a directory at the specified path if it does not already exist.
func CreateDirectoryIfNotExists(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("failed to create directory: '%s', error: '%s'", dir, err.Error())
	}
	return nil
}

var cpuRangeRe = regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)

// cpuRange expands "start-end" or "start".
func cpuRange(input string) ([]int, error) {
	matches := cpuRangeRe.FindStringSubmatch(input)
	if len(matches) == 0 {
		return nil, fmt.Errorf("invalid CPU range: %q", input)
	}
	start, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid start value: %s", matches[1])
	}
	if matches[2] == "" {
		return []int{start}, nil
	}
	end, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid end value: %s", matches[2])
	}
	if start > end {
		return nil, fmt.Errorf("start value is greater than end value: %d > %d", start, end)
	}
	result := make([]int, end-start+1)
	for i := start; i <= end; i++ {
		result[i-start] = i
	}
	return result, nil
}

// ParseCPUList expands a list in the kernel's cpulist format, e.g., "0-3,8,10-11", into
// sorted, distinct processor numbers. An empty list and AllCPUs return nil, meaning every
// processor.
func ParseCPUList(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.EqualFold(input, AllCPUs) {
		return nil, nil
	}
	var cpus []int
	for r := range strings.SplitSeq(input, ",") {
		ints, err := cpuRange(r)
		if err != nil {
			return nil, err
		}
		cpus = append(cpus, ints...)
	}
	slices.Sort(cpus)
	return slices.Compact(cpus), nil
}

// FormatCPUList is the inverse of ParseCPUList: consecutive processors collapse to a range.
func FormatCPUList(cpus []int) string {
	ordered := slices.Clone(cpus)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)
	var parts []string
	for i := 0; i < len(ordered); {
		j := i
		for j+1 < len(ordered) && ordered[j+1] == ordered[j]+1 {
			j++
		}
		if j == i {
			parts = append(parts, strconv.Itoa(ordered[i]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", ordered[i], ordered[j]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
