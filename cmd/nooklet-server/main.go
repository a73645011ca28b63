package main

import (
	"fmt"
	"os"

	"github.com/nooklet/nooklet/nookletservice"
)

func main() {
	if err := nookletservice.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
