package main

import (
	"fmt"
	"os"
	"strings"

	"vb2core"
	"vb2core/codec"
)

func cmdPreamble(args []string) {
	var kernelSubkeyPath, compressFormat string
	var positional []string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "--kernel-subkey="):
			kernelSubkeyPath = strings.TrimPrefix(a, "--kernel-subkey=")
			continue
		case strings.HasPrefix(a, "--compress="):
			compressFormat = strings.TrimPrefix(a, "--compress=")
			continue
		}
		positional = append(positional, a)
	}
	if len(positional) != 4 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool preamble <body-file> <data-key.pub> <data-key.priv> <out.preamble> [--kernel-subkey=<key.pub>] [--compress=<format>]")
		os.Exit(1)
	}
	// body-file is always the plaintext the signature covers; --compress
	// only tags the preamble so a loader knows to decompress the separate,
	// already-compressed blob cmd/vb2tool compress produces for storage.
	var flags uint32
	if compressFormat != "" {
		f := codec.Name(compressFormat)
		if f == codec.Unknown {
			fmt.Fprintln(os.Stderr, "vb2tool: unsupported compression format", compressFormat)
			os.Exit(1)
		}
		flags = uint32(f)
	}
	body, err := os.ReadFile(positional[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	dataPub, err := loadPublicKey(positional[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	dataPriv, err := loadPrivateKey(positional[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}

	var subkey *vb2.PublicKey
	if kernelSubkeyPath != "" {
		k, err := loadPublicKey(kernelSubkeyPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "vb2tool:", err)
			os.Exit(1)
		}
		subkey = &k
	}

	out, status := vb2.BuildPreamble(1, body, dataPriv, dataPub.Algorithm, subkey, flags)
	if status != vb2.Success {
		fmt.Fprintln(os.Stderr, "vb2tool: preamble:", status)
		os.Exit(1)
	}
	if err := os.WriteFile(positional[3], out, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
}
