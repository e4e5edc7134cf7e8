package main

import (
	"fmt"
	"os"

	"vb2core/codec"
)

func cmdCompress(format string, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool compress[=format] <infile> <outfile>")
		os.Exit(1)
	}
	f := codec.Name(format)
	if f == codec.Unknown {
		fmt.Fprintln(os.Stderr, "vb2tool: unsupported format", format)
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	out, err := codec.Encode(f, data)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool: compress:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(args[1], out, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
}

func cmdDecompress(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool decompress <infile> <outfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	out, err := codec.Decode(data, codec.Unknown)
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool: decompress:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(args[1], out, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
}
