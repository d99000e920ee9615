package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "convert":
		err = convertCmd(args[1:], stdout, stderr)
	case "schema":
		err = schemaCmd(args[1:], stdout, stderr)
	case "records":
		err = recordsCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	fmt.Fprintln(stderr, "bindery:", err)
	return 1
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "bindery CLI\n\nUsage:\n  bindery convert -schema schema.yaml -record Name [-o json|yaml] [-dump] [-allow-dup] [-v] DOC...\n  bindery schema -schema schema.yaml -record Name\n  bindery records -schema schema.yaml\n\nNotes:\n  - Documents are read by extension: .yaml/.yml, .json or .hcl.")
}
