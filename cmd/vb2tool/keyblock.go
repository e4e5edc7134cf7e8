package main

import (
	"fmt"
	"os"

	"vb2core"
)

func cmdKeyblock(args []string) {
	if len(args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool keyblock <data-key.pub> <parent-key.pub> <parent-key.priv> <out.keyblock>")
		os.Exit(1)
	}
	dataKey, err := loadPublicKey(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	parentPub, err := loadPublicKey(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	parentPriv, err := loadPrivateKey(args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}

	out, status := vb2.BuildKeyblock(dataKey, parentPriv, parentPub.Algorithm, 0)
	if status != vb2.Success {
		fmt.Fprintln(os.Stderr, "vb2tool: keyblock:", status)
		os.Exit(1)
	}
	if err := os.WriteFile(args[3], out, 0644); err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
}
