package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"vb2core"
)

// loadPublicKey reads a packed-key file written by cmdGenKey (or
// extracted elsewhere) in the wire form vb2.UnpackKey parses directly.
func loadPublicKey(path string) (vb2.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return vb2.PublicKey{}, err
	}
	key, status := vb2.UnpackKey(raw)
	if status != vb2.Success {
		return vb2.PublicKey{}, fmt.Errorf("unpack %s: %s", path, status)
	}
	return key, nil
}

// loadPrivateKey reads a PKCS#1 PEM private key file written by cmdGenKey.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}
