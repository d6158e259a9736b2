// Command cbprf evaluates the Triple DES keyed permutation from the command
// line. Keys and blocks are read and written as hex.
//
//	cbprf [-v] [-json] <command> [flags]
//
// Commands: version, keygen, derive, compute, invert, selftest.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	hex "github.com/tmthrgd/go-hex"

	"github.com/coinbase/cb-prf-go/pkg/prf"
	"github.com/coinbase/cb-prf-go/pkg/prf/logging"
	"github.com/coinbase/cb-prf-go/pkg/prf/tripledes"
)

// keyEnv supplies -key when the flag is omitted.
const keyEnv = "CBPRF_KEY"

const usage = `usage: cbprf [-v] [-json] <command> [flags]

commands:
  version                          print the build version
  keygen                           generate a random 24-byte key
  derive -secret HEX [-salt HEX] [-info STR]
                                   derive a key with HKDF-SHA256
  compute -key HEX -block HEX      apply the forward permutation
  invert -key HEX -block HEX       apply the inverse permutation
  selftest                         run the built-in known-answer vectors
`

// usageError marks failures caused by the command line itself.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	jsonOut bool
	log     logging.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cbprf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := fs.Bool("v", false, "log at debug level to stderr")
	jsonOut := fs.Bool("json", false, "write JSON objects instead of hex")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	c := &cli{
		stdout:  stdout,
		stderr:  stderr,
		jsonOut: *jsonOut,
		log:     logging.New(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))),
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	var err error
	switch cmd {
	case "version":
		err = c.version(rest)
	case "keygen":
		err = c.keygen(rest)
	case "derive":
		err = c.derive(rest)
	case "compute":
		err = c.transform(cmd, rest, (*tripledes.Engine).Compute)
	case "invert":
		err = c.transform(cmd, rest, (*tripledes.Engine).Invert)
	case "selftest":
		err = c.selftest(rest)
	default:
		err = usagef("unknown command %q", cmd)
	}

	var uerr *usageError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "cbprf: %v\n", err)
		fmt.Fprint(stderr, usage)
		return 2
	default:
		fmt.Fprintf(stderr, "cbprf %s: %v\n", cmd, err)
		return 1
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

// parse runs fs over args and turns flag errors into usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return &usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %q", fs.Name(), fs.Args())
	}
	return nil
}

// emit writes v as JSON under -json, otherwise the plain line.
func (c *cli) emit(plain string, v any) error {
	if c.jsonOut {
		return json.NewEncoder(c.stdout).Encode(v)
	}
	_, err := fmt.Fprintln(c.stdout, plain)
	return err
}

func (c *cli) version(args []string) error {
	if err := parse(c.flags("version"), args); err != nil {
		return err
	}
	return c.emit(
		fmt.Sprintf("cbprf %s (%s)", prf.WrapperVersion(), prf.BuildCommit()),
		struct {
			Version string `json:"version"`
			Commit  string `json:"commit"`
		}{prf.WrapperVersion(), prf.BuildCommit()},
	)
}

type keyOutput struct {
	Key string `json:"key"`
}

func (c *cli) keygen(args []string) error {
	if err := parse(c.flags("keygen"), args); err != nil {
		return err
	}
	key, err := tripledes.GenerateKey(nil)
	if err != nil {
		return err
	}
	defer prf.ZeroizeBytes(key)
	out := hex.EncodeToString(key)
	return c.emit(out, keyOutput{Key: out})
}

func (c *cli) derive(args []string) error {
	fs := c.flags("derive")
	secretHex := fs.String("secret", "", "shared secret (hex)")
	saltHex := fs.String("salt", "", "optional salt (hex)")
	info := fs.String("info", "", "context string")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *secretHex == "" {
		return usagef("derive: -secret is required")
	}
	secret, err := decodeHex("secret", *secretHex)
	if err != nil {
		return err
	}
	defer prf.ZeroizeBytes(secret)
	salt, err := decodeHex("salt", *saltHex)
	if err != nil {
		return err
	}
	key, err := tripledes.DeriveKey(secret, salt, []byte(*info))
	if err != nil {
		return err
	}
	defer prf.ZeroizeBytes(key)
	out := hex.EncodeToString(key)
	return c.emit(out, keyOutput{Key: out})
}

type blockOutput struct {
	Op    string `json:"op"`
	Block string `json:"block"`
}

func (c *cli) transform(name string, args []string, op func(*tripledes.Engine, []byte) ([]byte, error)) error {
	fs := c.flags(name)
	keyHex := fs.String("key", "", "24-byte key (hex); defaults to $"+keyEnv)
	blockHex := fs.String("block", "", "8-byte block (hex)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *keyHex == "" {
		*keyHex = os.Getenv(keyEnv)
	}
	if *keyHex == "" {
		return usagef("%s: -key or $%s is required", name, keyEnv)
	}
	if *blockHex == "" {
		return usagef("%s: -block is required", name)
	}

	key, err := decodeHex("key", *keyHex)
	if err != nil {
		return err
	}
	defer prf.ZeroizeBytes(key)
	block, err := decodeHex("block", *blockHex)
	if err != nil {
		return err
	}

	engine, err := tripledes.NewWithConfig(key, tripledes.Config{Logger: c.log})
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := op(engine, block)
	if err != nil {
		return err
	}
	out := hex.EncodeToString(res)
	return c.emit(out, blockOutput{Op: name, Block: out})
}

type selftestOutput struct {
	Passed int      `json:"passed"`
	Failed []string `json:"failed,omitempty"`
}

func (c *cli) selftest(args []string) error {
	if err := parse(c.flags("selftest"), args); err != nil {
		return err
	}
	res := selftestOutput{}
	for _, v := range knownAnswers {
		if err := v.check(c.log); err != nil {
			c.log.Error(context.Background(), "known answer failed", "name", v.name, "error", err)
			res.Failed = append(res.Failed, v.name)
			continue
		}
		res.Passed++
	}
	if err := c.emit(fmt.Sprintf("%d/%d vectors passed", res.Passed, len(knownAnswers)), res); err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d vectors failed", len(res.Failed))
	}
	return nil
}

func decodeHex(name, s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return b, nil
}
