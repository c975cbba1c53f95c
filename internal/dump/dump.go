// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package dump reads and writes captured CPUID leaves. The text format is canonical; YAML
// and JSON carry the same data.
package dump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Processor holds the raw leaves captured from one logical processor.
type Processor struct {
	CPU    int             `json:"cpu" yaml:"cpu"`
	Leaves []cpuid.RawLeaf `json:"leaves" yaml:"leaves"`
}

// Dump is a set of processors, ordered by CPU number.
type Dump struct {
	CPUs []Processor `json:"cpus" yaml:"cpus"`
}

// Processor returns the processor with the given CPU number.
func (d Dump) Processor(cpu int) (Processor, bool) {
	for _, p := range d.CPUs {
		if p.CPU == cpu {
			return p, true
		}
	}
	return Processor{}, false
}

// CPUNumbers lists the CPU numbers present in the dump.
func (d Dump) CPUNumbers() []int {
	nums := make([]int, 0, len(d.CPUs))
	for _, p := range d.CPUs {
		nums = append(nums, p.CPU)
	}
	return nums
}

func (d *Dump) sort() {
	slices.SortStableFunc(d.CPUs, func(a, b Processor) int { return a.CPU - b.CPU })
}

const (
	FormatText = "txt"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Formats lists the supported formats.
var Formats = []string{FormatText, FormatYAML, FormatJSON}

// FormatFromPath picks a format by file extension. Unknown extensions are text.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	return FormatText
}

// Write encodes d in the given format.
func Write(w io.Writer, d Dump, format string) error {
	d.CPUs = slices.Clone(d.CPUs)
	d.sort()
	switch format {
	case FormatText:
		return writeText(w, d)
	case FormatYAML:
		out, err := yaml.Marshal(d)
		if err != nil {
			return errors.Wrap(err, "failed to marshal dump to yaml")
		}
		_, err = w.Write(out)
		return err
	case FormatJSON:
		out, err := json.MarshalIndent(d, "", " ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal dump to json")
		}
		out = append(out, '\n')
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unsupported dump format: %s", format)
}

// Read decodes a dump in the given format and validates it.
func Read(r io.Reader, format string) (Dump, error) {
	var d Dump
	switch format {
	case FormatText:
		var err error
		if d, err = readText(r); err != nil {
			return Dump{}, err
		}
	case FormatYAML, FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return Dump{}, errors.Wrap(err, "failed to read dump")
		}
		if format == FormatYAML {
			err = yaml.UnmarshalStrict(data, &d)
		} else {
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			err = dec.Decode(&d)
		}
		if err != nil {
			return Dump{}, errors.Wrapf(err, "failed to parse %s dump", format)
		}
		if err := d.validate(); err != nil {
			return Dump{}, err
		}
	default:
		return Dump{}, fmt.Errorf("unsupported dump format: %s", format)
	}
	d.sort()
	return d, nil
}

// validate rejects repeated processors and repeated (leaf, subleaf) pairs.
func (d Dump) validate() error {
	cpus := make(map[int]bool)
	for _, p := range d.CPUs {
		if cpus[p.CPU] {
			return fmt.Errorf("CPU %d appears more than once", p.CPU)
		}
		cpus[p.CPU] = true
		seen := make(map[[2]uint32]bool)
		for _, l := range p.Leaves {
			key := [2]uint32{l.Leaf, l.Subleaf}
			if seen[key] {
				return fmt.Errorf("CPU %d: duplicate leaf %08x:%02x", p.CPU, l.Leaf, l.Subleaf)
			}
			seen[key] = true
		}
	}
	return nil
}

// ReadFile reads a dump, choosing the format from the file extension.
func ReadFile(path string) (Dump, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return Dump{}, errors.Wrap(err, "failed to open dump")
	}
	defer f.Close()
	d, err := Read(f, FormatFromPath(path))
	if err != nil {
		return Dump{}, errors.Wrapf(err, "%s", path)
	}
	return d, nil
}

// WriteFile writes a dump to path.
func WriteFile(path string, d Dump, format string) error {
	var buf bytes.Buffer
	if err := Write(&buf, d, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil { // #nosec G306
		return errors.Wrap(err, "failed to write dump")
	}
	return nil
}
