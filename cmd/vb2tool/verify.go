package main

import (
	"fmt"
	"os"

	"vb2core"
)

// cmdVerifyFW runs FwPhase3 and HashFwBody against a standalone
// vblock/GBB/body set, the same checks the dispatcher would run against
// the chosen slot during boot, and prints the resulting status.
func cmdVerifyFW(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: vb2tool verify-fw <vblock> <gbb> <body-file>")
		os.Exit(1)
	}
	vblock, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	gbbBytes, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}
	body, err := os.ReadFile(args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, "vb2tool:", err)
		os.Exit(1)
	}

	gbb, status := vb2.ParseGBB(gbbBytes)
	if status != vb2.Success {
		fmt.Println(status)
		os.Exit(1)
	}

	ctx, status := vb2.NewContext(64*1024, 0)
	if status != vb2.Success {
		fmt.Println(status)
		os.Exit(1)
	}
	ctx.CreateSecdataFirmware()
	wb := vb2.FromCtx(ctx)

	status = vb2.FwPhase3(ctx, wb, gbb, vblock)
	if status != vb2.Success {
		fmt.Println(status)
		os.Exit(1)
	}

	dataKey, status := vb2.UnpackKey(ctx.SD.DataKey.Bytes(ctx))
	if status != vb2.Success {
		fmt.Println(status)
		os.Exit(1)
	}

	status = vb2.HashFwBody(ctx, body, dataKey)
	fmt.Println(status)
	if status != vb2.Success {
		os.Exit(1)
	}
}
