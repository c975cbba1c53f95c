// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package dump

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
)

// ParseError reports a malformed or conflicting line of a text dump.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var (
	cpuHeaderRe = regexp.MustCompile(`^CPU\s+(\d+):$`)
	leafLineRe  = regexp.MustCompile(`^CPUID\s+([0-9a-fA-F]{1,8}):([0-9a-fA-F]{1,8})\s*=\s*([0-9a-fA-F]{1,8})\s+([0-9a-fA-F]{1,8})\s+([0-9a-fA-F]{1,8})\s+([0-9a-fA-F]{1,8})$`)
)

// asciiColumn renders the 16 register bytes, with '.' for anything not printable.
func asciiColumn(l cpuid.RawLeaf) string {
	b := l.Bytes()
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = '.'
		}
	}
	return string(b)
}

// FormatLeaf renders one leaf as a text dump line.
func FormatLeaf(l cpuid.RawLeaf) string {
	return fmt.Sprintf("%s | %s", l, asciiColumn(l))
}

func writeText(w io.Writer, d Dump) error {
	bw := bufio.NewWriter(w)
	for _, p := range d.CPUs {
		fmt.Fprintf(bw, "CPU %d:\n", p.CPU)
		for _, l := range p.Leaves {
			fmt.Fprintln(bw, FormatLeaf(l))
		}
	}
	return bw.Flush()
}

func parseHex(s string) uint32 {
	v, _ := strconv.ParseUint(s, 16, 32)
	return uint32(v)
}

// readText parses a text dump. Leaf lines ahead of the first header belong to CPU 0.
func readText(r io.Reader) (Dump, error) {
	var d Dump
	index := make(map[int]int)
	seen := make(map[int]map[[2]uint32]bool)
	current := -1
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := cpuHeaderRe.FindStringSubmatch(line); m != nil {
			cpu, err := strconv.Atoi(m[1])
			if err != nil {
				return Dump{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("invalid CPU number %q", m[1])}
			}
			if _, dup := index[cpu]; dup {
				return Dump{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("CPU %d appears more than once", cpu)}
			}
			index[cpu] = len(d.CPUs)
			seen[cpu] = make(map[[2]uint32]bool)
			d.CPUs = append(d.CPUs, Processor{CPU: cpu})
			current = cpu
			continue
		}
		data, _, _ := strings.Cut(line, "|")
		m := leafLineRe.FindStringSubmatch(strings.TrimSpace(data))
		if m == nil {
			return Dump{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("malformed line %q", line)}
		}
		if current < 0 {
			current = 0
			index[0] = len(d.CPUs)
			seen[0] = make(map[[2]uint32]bool)
			d.CPUs = append(d.CPUs, Processor{CPU: 0})
		}
		l := cpuid.RawLeaf{
			Leaf:    parseHex(m[1]),
			Subleaf: parseHex(m[2]),
			EAX:     parseHex(m[3]),
			EBX:     parseHex(m[4]),
			ECX:     parseHex(m[5]),
			EDX:     parseHex(m[6]),
		}
		key := [2]uint32{l.Leaf, l.Subleaf}
		if seen[current][key] {
			return Dump{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("duplicate leaf %08x:%02x for CPU %d", l.Leaf, l.Subleaf, current)}
		}
		seen[current][key] = true
		p := &d.CPUs[index[current]]
		p.Leaves = append(p.Leaves, l)
	}
	if err := scanner.Err(); err != nil {
		return Dump{}, errors.Wrap(err, "failed to read dump")
	}
	return d, nil
}
