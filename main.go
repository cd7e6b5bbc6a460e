// Package main provides the entry point for rvgold.
// rvgold is the golden model of a single-cycle core implementing a subset of
// RV32I: one instruction commits per cycle.
//
// For the full CLI, use: go run ./cmd/rvgold
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/rvgold/insts"
	"github.com/sarchlab/rvgold/programs"
)

func main() {
	fmt.Println("rvgold - RISC-V single-cycle golden model")
	fmt.Printf("Word width: %d bits\n", insts.XLEN)
	fmt.Println("")
	fmt.Println("Usage: rvgold [options] <image.hex|image.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -steps      Number of cycles to run")
	fmt.Println("  -config     Path to machine configuration JSON file")
	fmt.Println("  -data       Hex file with the initial data memory image")
	fmt.Println("  -json       One JSON object per cycle")
	fmt.Println("  -program    Run a canned program")
	fmt.Println("  -programs   Run and check every canned program")
	fmt.Println("  -cache      Enable the data cache model")
	fmt.Println("")
	fmt.Println("Canned programs:")
	for _, name := range programs.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvgold' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvgold' instead.")
	}
}
