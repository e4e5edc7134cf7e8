// Command vb2tool is a devtools CLI for building, signing, and verifying
// the synthetic GBB/keyblock/preamble/kernel images the vb2 test suite
// and manual experiments need, in the teacher's flat action-dispatch
// style (see magiskboot.go's Main/Usage).
package main

import (
	"fmt"
	"os"
	"strings"
)

func usage() {
	fmt.Fprintf(os.Stderr, `vb2tool - verified boot devtools

Usage: %s <action> [args...]

Supported actions:
  genkey <algorithm> <out-prefix>
    Generate an RSA keypair of the given packed-key algorithm
    (rsa2048sha256, rsa4096sha256, ...) and write <out-prefix>.pub /
    <out-prefix>.priv in the packed-key and PKCS#1 wire forms vb2 reads.

  keyblock <data-key.pub> <parent-key.pub> <parent-key.priv> <out.keyblock>
    Build and sign a keyblock certifying data-key with parent-key.

  preamble <body-file> <data-key.pub> <data-key.priv> <out.preamble> [--kernel-subkey=<key.pub>] [--compress=<format>]
    Build and sign a firmware or kernel preamble over body-file.
    --compress tags the preamble with a codec.Format so a loader knows to
    decompress the stored body (produced separately via compress[=format])
    before verifying it.

  verify-fw <vblock> <gbb> <body-file>
    Run FwPhase3 + HashFwBody against a standalone vblock/GBB/body set
    and print the resulting vb2.Status.

  hexpatch <file> <hexpattern1> <hexpattern2>
    Search hexpattern1 in file and replace it with hexpattern2, for
    corrupting a known-good fixture to exercise a specific failure path.

  compress[=format] <infile> <outfile>
    Compress infile with format (default gzip) to outfile. Supported
    formats: gzip zopfli xz lzma bzip2 lz4.

  decompress <infile> <outfile>
    Detect infile's compression format and decompress it to outfile.
`, os.Args[0])
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	action := strings.TrimLeft(os.Args[1], "-")
	args := os.Args[2:]

	switch {
	case action == "genkey":
		cmdGenKey(args)
	case action == "keyblock":
		cmdKeyblock(args)
	case action == "preamble":
		cmdPreamble(args)
	case action == "verify-fw":
		cmdVerifyFW(args)
	case action == "hexpatch":
		cmdHexPatch(args)
	case action == "decompress":
		cmdDecompress(args)
	case strings.HasPrefix(action, "compress"):
		format := "gzip"
		if len(action) > 8 && action[8] == '=' {
			format = action[9:]
		}
		cmdCompress(format, args)
	default:
		usage()
	}
}
