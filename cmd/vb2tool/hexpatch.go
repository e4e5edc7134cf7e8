package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// cmdHexPatch mmaps file read-write and replaces every occurrence of
// fromHex with toHex in place, adapted from the teacher's patch.go
// HexPatch. It's used to take a known-good signed fixture and flip a
// specific byte sequence (a keyblock magic, a version field, a signature
// byte) to exercise one precise failure path in a test, rather than
// hand-building a broken fixture from scratch.
func cmdHexPatch(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool hexpatch <file> <hexpattern1> <hexpattern2>")
		os.Exit(1)
	}
	file, fromHex, toHex := args[0], args[1], args[2]

	from, err := hex.DecodeString(fromHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool: bad hex pattern 1:", err)
		os.Exit(1)
	}
	to, err := hex.DecodeString(toHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool: bad hex pattern 2:", err)
		os.Exit(1)
	}
	if len(from) == 0 || len(to) != len(from) {
		fmt.Fprintln(os.Stderr, "vb2tool: patterns must be equal, nonzero length")
		os.Exit(1)
	}

	fd, err := os.OpenFile(file, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	defer fd.Close()

	m, err := mmap.Map(fd, mmap.RDWR, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	defer m.Unmap()

	patched := false
	for i := 0; i+len(from) <= len(m); i++ {
		if m[i] != from[0] {
			continue
		}
		match := true
		for j := range from {
			if m[i+j] != from[j] {
				match = false
				break
			}
		}
		if match {
			copy(m[i:i+len(to)], to)
			fmt.Fprintf(os.Stderr, "patch @ 0x%08x [%s] -> [%s]\n", i, fromHex, toHex)
			patched = true
		}
	}

	if !patched {
		fmt.Fprintln(os.Stderr, "vb2tool: pattern not found")
		os.Exit(1)
	}
}
