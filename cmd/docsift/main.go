package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dgallion1/docsift/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}
	cli.Execute()
}
