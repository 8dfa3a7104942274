package main

import (
	"fmt"
	"os"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
)

func main() {
	logger.Init()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
