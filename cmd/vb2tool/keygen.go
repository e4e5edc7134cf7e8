package main

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"vb2core"
)

func parseAlg(name string) (vb2.SigAlgorithm, bool) {
	switch name {
	case "rsa1024sha1":
		return vb2.AlgRSA1024SHA1, true
	case "rsa1024sha256":
		return vb2.AlgRSA1024SHA256, true
	case "rsa2048sha1":
		return vb2.AlgRSA2048SHA1, true
	case "rsa2048sha256":
		return vb2.AlgRSA2048SHA256, true
	case "rsa4096sha256":
		return vb2.AlgRSA4096SHA256, true
	case "rsa8192sha512":
		return vb2.AlgRSA8192SHA512, true
	default:
		return 0, false
	}
}

// cmdGenKey generates a packed keypair and writes <prefix>.pub as the
// packed-key wire form vb2.UnpackKey reads directly, and <prefix>.priv as
// a standard PKCS#1 PEM block so the private half stays inspectable with
// ordinary tools (openssl rsa -in ...) despite the public half using
// vboot's own wire format.
func cmdGenKey(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool genkey <algorithm> <out-prefix>")
		os.Exit(1)
	}
	alg, ok := parseAlg(args[0])
	if !ok {
		fmt.Fprintln(os.Stderr, "vb2tool: unknown algorithm", args[0])
		os.Exit(1)
	}

	priv, pub, status := vb2.GenerateKey(alg, 1)
	if status != vb2.Success {
		fmt.Fprintln(os.Stderr, "vb2tool: genkey:", status)
		os.Exit(1)
	}

	if err := os.WriteFile(args[1]+".pub", vb2.MarshalKey(pub), 0644); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}

	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}
	if err := os.WriteFile(args[1]+".priv", pem.EncodeToMemory(block), 0600); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "wrote %s.pub, %s.priv\n", args[1], args[1])
}
