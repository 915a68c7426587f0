package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all flags for the mdpreview command.
type cliFlags struct {
	config       string
	output       string
	standalone   bool
	title        string
	tags         []string
	noEmbed      bool
	maxImageSize int64
	workers      int
	quiet        bool
	verbose      bool
	version      bool
}

// parseFlags parses command-line arguments and returns the flags plus the
// positional input paths.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}

	fs := flag.NewFlagSet("mdpreview", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory (default: next to input)")
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap output in a full HTML document with the viewer stylesheet")
	fs.StringVar(&f.title, "title", "", "document title for standalone output")
	fs.StringSliceVar(&f.tags, "tags", nil, "fence languages handed to client-side renderers (default: mermaid,math)")
	fs.BoolVar(&f.noEmbed, "no-embed", false, "do not inline local images as data URIs")
	fs.Int64Var(&f.maxImageSize, "max-image-size", 0, "max size in bytes for inlined images (default: 10 MiB)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel conversions for batch mode (default: CPU count)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-file progress")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}

	if f.quiet && f.verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	if f.maxImageSize < 0 {
		return nil, nil, fmt.Errorf("--max-image-size must be positive")
	}

	return f, fs.Args(), nil
}

const usageText = `mdpreview renders Markdown to preview HTML with source-line metadata.

Usage:
  mdpreview [flags] [file ...]

Reads from stdin and writes to stdout when no files are given. With files,
each input is written next to itself with an .html extension unless --output
names a file (single input) or a directory.

Flags:
`
