// Command flatview builds, inspects and verifies collection buffers.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/flatview"
	"github.com/meigma/flatview/cache/disk"
	"github.com/meigma/flatview/internal/compress"
	"github.com/meigma/flatview/internal/encode"
	"github.com/meigma/flatview/internal/fb"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors that should print usage and exit with exitUsage.
var errUsage = errors.New("usage")

const usage = `usage: flatview [-v] <command> [flags] [args]

commands:
  build  -o FILE [-name N] [-names] [-zstd] [-cache DIR] ID...
  lookup -f FILE [-first|-all] [-names] ID
  verify [-j N] FILE...
  dump   FILE
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("flatview", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	verbose := global.Bool("v", false, "enable debug logging")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return exitUsage
	}

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "build":
		err = c.build(cmdArgs)
	case "lookup":
		err = c.lookup(cmdArgs)
	case "verify":
		err = c.verify(ctx, cmdArgs)
	case "dump":
		err = c.dump(cmdArgs)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return exitUsage
	case errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		fmt.Fprintln(stderr, "flatview:", err)
		return exitError
	}
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) build(args []string) error {
	fs := c.flags("build")
	out := fs.String("o", "", "output file")
	name := fs.String("name", "", "collection name")
	names := fs.Bool("names", false, "treat arguments as names and hash them to ids")
	useZstd := fs.Bool("zstd", false, "zstd-compress the output")
	cacheDir := fs.String("cache", "", "also store the buffer in a disk cache at DIR")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}
	if *out == "" {
		return fmt.Errorf("%w: build requires -o", errUsage)
	}

	var data []byte
	if *names {
		data = encode.Names(*name, fs.Args())
	} else {
		ids, err := parseIDs(fs.Args())
		if err != nil {
			return err
		}
		data = encode.Collection(*name, ids)
	}
	raw := len(data)

	if *useZstd {
		enc, err := compress.Encode(data, zstd.SpeedBestCompression)
		if err != nil {
			return fmt.Errorf("compress: %w", err)
		}
		data = enc
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil { //nolint:gosec // output is not secret
		return err
	}
	c.logger.Debug("wrote collection", "path", *out, "size", len(data), "raw", raw, "referrables", fs.NArg())

	if *cacheDir != "" {
		dc, err := disk.New(*cacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		store, err := flatview.NewStore(dc, flatview.WithLogger(c.logger))
		if err != nil {
			return err
		}
		dgst, err := store.Put(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, dgst)
	}
	return nil
}

func (c *cli) lookup(args []string) error {
	fs := c.flags("lookup")
	file := fs.String("f", "", "collection file")
	first := fs.Bool("first", false, "print the first match")
	all := fs.Bool("all", false, "print every match")
	names := fs.Bool("names", false, "treat the argument as a name")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}
	if *file == "" || fs.NArg() != 1 {
		return fmt.Errorf("%w: lookup requires -f FILE and one ID", errUsage)
	}
	if *first && *all {
		return fmt.Errorf("%w: -first and -all are exclusive", errUsage)
	}

	var id uint64
	if *names {
		id = fb.HashID(fs.Arg(0))
	} else {
		ids, err := parseIDs(fs.Args())
		if err != nil {
			return err
		}
		id = ids[0]
	}

	idx, err := c.open(*file)
	if err != nil {
		return err
	}

	switch {
	case *all:
		n := 0
		for r := range idx.LookupAll(id) {
			c.printReferrable(r)
			n++
		}
		if n == 0 {
			return fmt.Errorf("id %d: %w", id, flatview.ErrNotFound)
		}
		return nil
	case *first:
		r, ok := idx.LookupFirst(id)
		if !ok {
			return fmt.Errorf("id %d: %w", id, flatview.ErrNotFound)
		}
		c.printReferrable(r)
		return nil
	default:
		r, ok := idx.Lookup(id)
		if !ok {
			return fmt.Errorf("id %d: %w", id, flatview.ErrNotFound)
		}
		c.printReferrable(r)
		return nil
	}
}

func (c *cli) verify(ctx context.Context, args []string) error {
	fs := c.flags("verify")
	jobs := fs.Int("j", 4, "files verified concurrently")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: verify requires at least one FILE", errUsage)
	}

	files := fs.Args()
	results := make([]string, len(files))
	failed := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := c.open(path)
			if err != nil {
				failed[i] = err
				return nil
			}
			results[i] = fmt.Sprintf("ok\t%s\t%s\t%d", path, idx.Digest(), idx.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for i, path := range files {
		if failed[i] != nil {
			fmt.Fprintf(c.stdout, "FAIL\t%s\t%v\n", path, failed[i])
			errs = append(errs, failed[i])
			continue
		}
		fmt.Fprintln(c.stdout, results[i])
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed verification", len(errs), len(files))
	}
	return nil
}

func (c *cli) dump(args []string) error {
	fs := c.flags("dump")
	if err := fs.Parse(args); err != nil {
		return parseError(err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: dump requires one FILE", errUsage)
	}
	idx, err := c.open(fs.Arg(0))
	if err != nil {
		return err
	}

	desc := idx.Descriptor()
	fmt.Fprintf(c.stdout, "name:        %s\n", idx.Name())
	fmt.Fprintf(c.stdout, "version:     %d\n", idx.Version())
	fmt.Fprintf(c.stdout, "media type:  %s\n", desc.MediaType)
	fmt.Fprintf(c.stdout, "digest:      %s\n", desc.Digest)
	fmt.Fprintf(c.stdout, "size:        %d\n", desc.Size)
	fmt.Fprintf(c.stdout, "referrables: %d\n", idx.Len())
	for r := range idx.Entries() {
		c.printReferrable(r)
	}
	return nil
}

// open reads and loads a collection file, decompressing it when needed.
func (c *cli) open(path string) (*flatview.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx, err := flatview.Decode(bytes.NewReader(data), flatview.WithLogger(c.logger.With("path", path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

func (c *cli) printReferrable(r flatview.Referrable) {
	fmt.Fprintf(c.stdout, "%d\t@%d\n", r.ID(), r.Offset())
}

func parseIDs(args []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid id %q", errUsage, arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", errUsage, err)
}
