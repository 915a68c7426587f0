package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	mdpreview "github.com/mdpreview/go-mdpreview"
	"github.com/mdpreview/go-mdpreview/internal/assets"
	"github.com/mdpreview/go-mdpreview/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput      = errors.New("no input files")
	ErrReadMarkdown = errors.New("failed to read markdown")
	ErrWriteHTML    = errors.New("failed to write HTML")
	ErrNotMarkdown  = errors.New("not a markdown file")
)

// standaloneTemplate wraps fragment output in a complete HTML5 document.
const standaloneTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
%s</style>
</head>
<body>
%s
</body>
</html>
`

// run executes a conversion: stdin to stdout when no inputs are given,
// otherwise a batch over the input files.
func run(flags *cliFlags, inputs []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if flags.config != "" {
		cfg, err := config.LoadConfig(flags.config)
		if err != nil {
			return err
		}
		applyConfig(flags, cfg)
	}

	renderer := newRenderer(flags)

	if len(inputs) == 0 {
		return convertStream(flags, renderer, stdin, stdout)
	}

	jobs, err := discoverJobs(flags, inputs)
	if err != nil {
		return err
	}
	return convertBatch(flags, renderer, jobs, stderr)
}

// applyConfig fills flag values from a loaded config file. Flags given on
// the command line win over the file.
func applyConfig(flags *cliFlags, cfg *config.Config) {
	if flags.output == "" {
		flags.output = cfg.Output.DefaultDir
	}
	if len(flags.tags) == 0 {
		flags.tags = cfg.Render.Tags
	}
	if !flags.noEmbed {
		flags.noEmbed = cfg.Render.NoEmbed
	}
	if flags.maxImageSize == 0 {
		flags.maxImageSize = cfg.Render.MaxImageSize
	}
	if !flags.standalone {
		flags.standalone = cfg.Standalone.Enabled
	}
	if flags.title == "" {
		flags.title = cfg.Standalone.Title
	}
}

// newRenderer builds the shared Renderer from CLI flags. A single instance
// serves all workers; it is safe for concurrent use.
func newRenderer(flags *cliFlags) *mdpreview.Renderer {
	var opts []mdpreview.Option
	if len(flags.tags) > 0 {
		opts = append(opts, mdpreview.WithFencedTags(flags.tags...))
	}
	if flags.noEmbed {
		opts = append(opts, mdpreview.WithoutImageEmbedding())
	}
	if flags.maxImageSize > 0 {
		opts = append(opts, mdpreview.WithMaxImageSize(flags.maxImageSize))
	}
	return mdpreview.New(opts...)
}

// convertStream renders stdin to stdout. Without a file path, relative
// images and links resolve against the working directory.
func convertStream(flags *cliFlags, renderer *mdpreview.Renderer, stdin io.Reader, stdout io.Writer) error {
	content, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	basePath := filepath.Join(".", "stdin.md")
	html, err := renderer.Render(string(content), basePath)
	if err != nil {
		return err
	}
	html = finishDocument(flags, "stdin", html)

	if flags.output != "" {
		if err := os.WriteFile(flags.output, []byte(html), 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteHTML, err)
		}
		return nil
	}
	_, err = io.WriteString(stdout, html)
	return err
}

// job pairs one input file with its output path.
type job struct {
	input  string
	output string
}

// discoverJobs validates the inputs and computes output paths. --output is
// treated as a file path for a single input and as a directory otherwise.
func discoverJobs(flags *cliFlags, inputs []string) ([]job, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	outputIsDir := false
	if flags.output != "" {
		if info, err := os.Stat(flags.output); err == nil && info.IsDir() {
			outputIsDir = true
		} else if len(inputs) > 1 {
			// Multiple inputs need a directory target.
			if err := os.MkdirAll(flags.output, 0o755); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWriteHTML, err)
			}
			outputIsDir = true
		}
	}

	jobs := make([]job, 0, len(inputs))
	for _, input := range inputs {
		if !isMarkdownPath(input) {
			return nil, fmt.Errorf("%w: %q", ErrNotMarkdown, input)
		}
		if _, err := os.Stat(input); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		}
		jobs = append(jobs, job{input: input, output: outputPath(flags, input, outputIsDir, len(inputs))})
	}
	return jobs, nil
}

func outputPath(flags *cliFlags, input string, outputIsDir bool, inputCount int) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".html"
	switch {
	case flags.output == "":
		return filepath.Join(filepath.Dir(input), base)
	case outputIsDir:
		return filepath.Join(flags.output, base)
	case inputCount == 1:
		return flags.output
	default:
		return filepath.Join(flags.output, base)
	}
}

func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// convertBatch renders all jobs with a bounded worker pool. The first error
// is reported after all workers drain; remaining files still convert.
func convertBatch(flags *cliFlags, renderer *mdpreview.Renderer, jobs []job, stderr io.Writer) error {
	workers := flags.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan job)
	errCh := make(chan error, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if err := convertFile(flags, renderer, j); err != nil {
					errCh <- fmt.Errorf("%s: %w", j.input, err)
					continue
				}
				if flags.verbose {
					fmt.Fprintf(stderr, "%s -> %s\n", j.input, j.output)
				}
			}
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
		if flags.verbose || flags.quiet {
			continue
		}
		fmt.Fprintln(stderr, err)
	}
	return firstErr
}

// convertFile renders a single markdown file to its output path.
func convertFile(flags *cliFlags, renderer *mdpreview.Renderer, j job) error {
	content, err := os.ReadFile(j.input)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}

	html, err := renderer.Render(string(content), j.input)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(j.input), filepath.Ext(j.input))
	html = finishDocument(flags, title, html)

	if err := os.WriteFile(j.output, []byte(html), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHTML, err)
	}
	return nil
}

// finishDocument optionally wraps fragment HTML in a standalone document
// with the embedded viewer stylesheet.
func finishDocument(flags *cliFlags, title, html string) string {
	if !flags.standalone {
		return html
	}
	if flags.title != "" {
		title = flags.title
	}
	return fmt.Sprintf(standaloneTemplate, title, assets.ViewerCSS(), html)
}
