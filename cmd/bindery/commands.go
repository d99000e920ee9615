package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/reoring/bindery"
	"github.com/reoring/bindery/dsl"
	"github.com/reoring/bindery/load"
)

var errUsage = errors.New("usage")

func newFlags(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func newLogger(verbose bool, stderr io.Writer) logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	zerologr.SetMaxV(1)
	out := zerolog.ConsoleWriter{Out: stderr, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	zl := zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return zerologr.New(&zl).WithName("bindery")
}

// loadEngine declares the records of a schema file and checks them.
func loadEngine(path string, log logr.Logger) (*bindery.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e := bindery.New(bindery.WithLogger(log))
	if _, err := dsl.LoadSchema(e, data); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return e, nil
}

func recordFlag(e *bindery.Engine, name string) (*bindery.Record, error) {
	rec, ok := e.Record(name)
	if !ok {
		return nil, fmt.Errorf("record %q is not declared", name)
	}
	return rec, nil
}

func convertCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlags("convert", stderr)
	var schemaPath, recName, output string
	var dump, allowDup, verbose bool
	fs.StringVar(&schemaPath, "schema", "", "YAML schema file declaring the records")
	fs.StringVar(&recName, "record", "", "record each document converts to")
	fs.StringVar(&output, "o", "json", "output format: json or yaml")
	fs.BoolVar(&dump, "dump", false, "print the typed values instead of rendering them")
	fs.BoolVar(&allowDup, "allow-dup", false, "let repeated document keys overwrite earlier ones")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if schemaPath == "" || recName == "" || fs.NArg() == 0 || (output != "json" && output != "yaml") {
		fs.Usage()
		return errUsage
	}
	log := newLogger(verbose, stderr)
	e, err := loadEngine(schemaPath, log)
	if err != nil {
		return err
	}
	rec, err := recordFlag(e, recName)
	if err != nil {
		return err
	}

	opts := []load.Option{load.WithLogger(log)}
	if allowDup {
		opts = append(opts, load.AllowDuplicateKeys())
	}
	files := fs.Args()
	results := make([][]any, len(files))
	start := time.Now()
	var grp errgroup.Group
	for i, path := range files {
		i, path := i, path
		grp.Go(func() error {
			vals, err := load.Decode(e, rec, path, opts...)
			if err != nil {
				return err
			}
			results[i] = vals
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	log.V(1).Info("converted documents", "files", len(files), "elapsed", time.Since(start).String())

	var values []any
	for _, vals := range results {
		values = append(values, vals...)
	}
	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
		for _, v := range values {
			cfg.Fdump(stdout, v)
		}
		return nil
	}
	rendered := make([]any, len(values))
	for i, v := range values {
		r, err := e.Render(v)
		if err != nil {
			return err
		}
		rendered[i] = r
	}
	return write(stdout, output, rendered)
}

func write(w io.Writer, format string, docs []any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, d := range docs {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return enc.Close()
	}
	for _, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func schemaCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlags("schema", stderr)
	var schemaPath, recName string
	fs.StringVar(&schemaPath, "schema", "", "YAML schema file declaring the records")
	fs.StringVar(&recName, "record", "", "root record of the JSON Schema")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if schemaPath == "" || recName == "" {
		fs.Usage()
		return errUsage
	}
	e, err := loadEngine(schemaPath, logr.Discard())
	if err != nil {
		return err
	}
	rec, err := recordFlag(e, recName)
	if err != nil {
		return err
	}
	s, err := e.JSONSchema(rec)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func recordsCmd(args []string, stdout, stderr io.Writer) error {
	fs := newFlags("records", stderr)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "YAML schema file declaring the records")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if schemaPath == "" {
		fs.Usage()
		return errUsage
	}
	e, err := loadEngine(schemaPath, logr.Discard())
	if err != nil {
		return err
	}
	for _, r := range e.Records() {
		line := r.ID()
		if b := r.Base(); b != nil {
			line += " extends " + b.ID()
		}
		if d := r.Discriminator(); d != nil {
			line += fmt.Sprintf(" [%s=%s]", d.Key, d.Tag)
		}
		fields := make([]string, 0, len(r.Fields()))
		for _, f := range r.Fields() {
			fields = append(fields, f.Name+" "+f.Type.String())
		}
		if _, err := fmt.Fprintf(stdout, "%s: %s\n", line, strings.Join(fields, ", ")); err != nil {
			return err
		}
	}
	return nil
}
