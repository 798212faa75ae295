// Go-BMP reads, filters and writes 8-bit gray and 24-bit BMP images
package main

import (
	"os"

	"github.com/anas-shakeel/go-bmp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
