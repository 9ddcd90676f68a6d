// Package main is the entry point for the dbfilter CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	// Database drivers for --driver postgres and --driver mysql.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/roach88/dbfilter/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; anything else (bad flags,
	// wrong argument count) is a usage error printed here.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(cli.ExitCommandError)
}
