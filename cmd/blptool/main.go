package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/pflag"
	"go.coder.com/cli"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func fail(err error) {
	fmt.Printf("FAILED: %v\n", err)
	os.Exit(33)
}

// warner prints warnings one line at a time. The prefix is highlighted when
// the output is a terminal.
type warner struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
}

func newWarner(out *os.File) *warner {
	prefix := "warning: "
	if term.IsTerminal(int(out.Fd())) {
		prefix = "\x1b[33mwarning:\x1b[0m "
	}
	return &warner{out: out, prefix: prefix}
}

func (w *warner) Printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, w.prefix+format+"\n", args...)
}

type rootCmd struct{}

func (r *rootCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "blptool",
		Usage: "[subcommand] [flags]",
		Desc:  "Inspect, decode and encode BLP textures.",
	}
}

func (r *rootCmd) Run(fl *pflag.FlagSet) { fl.Usage() }

func (r *rootCmd) Subcommands() []cli.Command {
	return []cli.Command{&infoCmd{}, &decodeCmd{}, &encodeCmd{}, &batchCmd{}}
}

type infoCmd struct{}

func (c *infoCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "info",
		Usage: "<file.blp>...",
		Desc:  "Print the header and mip table of BLP files.",
	}
}

func (c *infoCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() == 0 {
		fl.Usage()
		os.Exit(2)
	}
	w := newWarner(os.Stdout)
	for _, path := range fl.Args() {
		out, err := describe(path, w.Printf)
		if err != nil {
			fail(err)
		}
		fmt.Print(out)
	}
}

type decodeCmd struct {
	settings
	outDir string
	mip    int
	all    bool
}

func (c *decodeCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "decode",
		Usage: "<file.blp> [flags]",
		Desc:  "Export a mip of a BLP file as an ordinary image.",
	}
}

func (c *decodeCmd) RegisterFlags(fl *pflag.FlagSet) {
	c.registerCommon(fl)
	c.registerDecode(fl)
	fl.StringVarP(&c.outDir, "out", "o", ".", "output directory")
	fl.IntVar(&c.mip, "mip", 0, "mip slot to export")
	fl.BoolVar(&c.all, "all", false, "export every decoded mip")
}

func (c *decodeCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() != 1 {
		fl.Usage()
		os.Exit(2)
	}
	cfg, err := c.resolve(fl)
	if err != nil {
		fail(err)
	}
	mip := c.mip
	if c.all {
		mip = allMips
	}
	written, err := decodeFile(fl.Arg(0), c.outDir, mip, cfg, newWarner(os.Stdout).Printf)
	if err != nil {
		fail(err)
	}
	for _, p := range written {
		fmt.Printf("Wrote %s.\n", p)
	}
}

type encodeCmd struct {
	settings
	out string
}

func (c *encodeCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "encode",
		Usage: "<image|file.blp> -o <out.blp> [flags]",
		Desc:  "Write an image or BLP file as a BLP1 JPEG texture.",
	}
}

func (c *encodeCmd) RegisterFlags(fl *pflag.FlagSet) {
	c.registerCommon(fl)
	c.registerEncode(fl)
	fl.StringVarP(&c.out, "out", "o", "", "output file")
}

func (c *encodeCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() != 1 || c.out == "" {
		fl.Usage()
		os.Exit(2)
	}
	cfg, err := c.resolve(fl)
	if err != nil {
		fail(err)
	}
	if err := encodeFile(fl.Arg(0), c.out, cfg, newWarner(os.Stdout).Printf); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s.\n", c.out)
}

type batchCmd struct {
	settings
	outDir string
}

func (c *batchCmd) Spec() cli.CommandSpec {
	return cli.CommandSpec{
		Name:  "batch",
		Usage: "<decode|encode> <files...> -o <dir> [flags]",
		Desc:  "Convert many files in parallel.",
	}
}

func (c *batchCmd) RegisterFlags(fl *pflag.FlagSet) {
	c.registerCommon(fl)
	c.registerDecode(fl)
	c.registerEncode(fl)
	c.registerBatch(fl)
	fl.StringVarP(&c.outDir, "out", "o", ".", "output directory")
}

func (c *batchCmd) Run(fl *pflag.FlagSet) {
	if fl.NArg() < 2 {
		fl.Usage()
		os.Exit(2)
	}
	cfg, err := c.resolve(fl)
	if err != nil {
		fail(err)
	}
	jobs := make([]*convertJob, 0, fl.NArg()-1)
	for _, path := range fl.Args()[1:] {
		jobs = append(jobs, &convertJob{Mode: fl.Arg(0), Path: path, OutDir: c.outDir, Config: cfg})
	}
	fmt.Printf("Converting %d files...\n", len(jobs))
	if err := runBatch(context.Background(), jobs, cfg.Workers, newWarner(os.Stdout).Printf); err != nil {
		fail(err)
	}
}

func runBatch(ctx context.Context, jobs []*convertJob, workers int, logf logFunc) error {
	if err := os.MkdirAll(jobsDir(jobs), 0777); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		g.Go(func() error { return j.Run(gctx, logf) })
	}
	return g.Wait()
}

func jobsDir(jobs []*convertJob) string {
	if len(jobs) == 0 {
		return "."
	}
	return jobs[0].OutDir
}

func main() {
	cli.RunRoot(&rootCmd{})
}
