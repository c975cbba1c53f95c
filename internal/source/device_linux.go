// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package source

import (
	"encoding/binary"
	"fmt"

	"cpuid/internal/cpuid"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DeviceSource reads leaves through the cpuid character device of one processor. The
// kernel runs the instruction on that processor, so no pinning is needed.
type DeviceSource struct {
	cpu  int
	path string
	fd   int
}

// OpenDevice opens /dev/cpu/<cpu>/cpuid. The cpuid kernel module must be loaded.
func OpenDevice(cpu int) (*DeviceSource, error) {
	path := fmt.Sprintf(deviceTemplate, cpu)
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open %s, load the cpuid module with 'modprobe cpuid'", path)
	}
	return &DeviceSource{cpu: cpu, path: path, fd: fd}, nil
}

// Query reads one leaf. The file offset selects the leaf in the low 32 bits and the
// subleaf in the high 32 bits.
func (d *DeviceSource) Query(leaf, subleaf uint32) (cpuid.RawLeaf, error) {
	buf := make([]byte, 16)
	offset := int64(uint64(subleaf)<<32 | uint64(leaf)) // #nosec G115
	n, err := unix.Pread(d.fd, buf, offset)
	if err != nil {
		return cpuid.RawLeaf{}, &cpuid.QueryFailure{Leaf: leaf, Subleaf: subleaf, Err: errors.Wrapf(err, "read %s", d.path)}
	}
	if n != len(buf) {
		return cpuid.RawLeaf{}, &cpuid.QueryFailure{Leaf: leaf, Subleaf: subleaf, Err: fmt.Errorf("wrong byte count %d from %s", n, d.path)}
	}
	return cpuid.RawLeaf{
		Leaf:    leaf,
		Subleaf: subleaf,
		EAX:     binary.LittleEndian.Uint32(buf[0:4]),
		EBX:     binary.LittleEndian.Uint32(buf[4:8]),
		ECX:     binary.LittleEndian.Uint32(buf[8:12]),
		EDX:     binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// Close releases the device.
func (d *DeviceSource) Close() error {
	return unix.Close(d.fd)
}

func openDevice(cpu int) (cpuid.Source, func(), error) {
	d, err := OpenDevice(cpu)
	if err != nil {
		return nil, nil, err
	}
	return d, func() { _ = d.Close() }, nil
}
