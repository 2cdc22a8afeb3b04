package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/hscode/internal/cli"
	"github.com/Veraticus/hscode/internal/common"
	"github.com/Veraticus/hscode/internal/config"
	"github.com/Veraticus/hscode/internal/report"
	"github.com/spf13/cobra"
)

// exportOptions selects which outputs to produce for a result.
type exportOptions struct {
	pdfPath      string
	pdfDir       string
	markdownPath string
	copy         bool
}

func (o exportOptions) requested() bool {
	return o.pdfPath != "" || o.pdfDir != "" || o.markdownPath != "" || o.copy
}

func addExportFlags(cmd *cobra.Command, opts *exportOptions) {
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "write a PDF report to this file or directory")
	cmd.Flags().StringVar(&opts.pdfDir, "pdf-dir", "", "write a PDF report named after the HS code into this directory")
	cmd.Flags().StringVar(&opts.markdownPath, "markdown", "", "write a Markdown report to this file or directory")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the Markdown report to the clipboard")
}

// outputPath resolves target to a file path. A directory, or a path ending
// in a separator, receives the default filename for in.
func outputPath(target string, in report.Input, ext string) string {
	target = config.ExpandPath(target)
	if strings.HasSuffix(target, string(os.PathSeparator)) {
		return filepath.Join(target, report.Filename(in, ext))
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, report.Filename(in, ext))
	}
	return target
}

// writeExports produces every requested output. It stops at the first failure.
func writeExports(w io.Writer, in report.Input, opts exportOptions, logger *slog.Logger) error {
	if opts.markdownPath != "" || opts.copy {
		md := report.Markdown(in)

		if opts.markdownPath != "" {
			path := outputPath(opts.markdownPath, in, "md")
			if err := os.WriteFile(path, []byte(md+"\n"), 0o600); err != nil {
				return fmt.Errorf("%w: failed to write %s: %v", common.ErrExportFailed, path, err)
			}
			fmt.Fprintln(w, cli.FormatSuccess("Saved Markdown to "+path))
		}

		if opts.copy {
			if err := cli.CopyToClipboard(md); err != nil {
				return err
			}
			fmt.Fprintln(w, cli.FormatSuccess("Copied to clipboard"))
		}
	}

	if opts.pdfPath != "" || opts.pdfDir != "" {
		target := opts.pdfPath
		if target == "" {
			target = opts.pdfDir + string(os.PathSeparator)
		}
		path := outputPath(target, in, "pdf")

		doc, err := report.NewExporter(config.LoadExportOptions(), logger).PDF(in)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
			return fmt.Errorf("%w: failed to write %s: %v", common.ErrExportFailed, path, err)
		}
		fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Saved PDF (%d pages) to %s", doc.Pages, path)))
	}

	return nil
}

func exportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export RESULT.json",
		Short: "Export a saved classification result",
		Long: `Re-export a result saved with "classify --save" as Markdown, PDF,
or to the clipboard. Without output flags the Markdown is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadResult(args[0])
			if err != nil {
				return err
			}
			in := result.input()

			if !opts.requested() {
				fmt.Fprintln(cmd.OutOrStdout(), report.Markdown(in))
				return nil
			}
			return writeExports(cmd.OutOrStdout(), in, opts, slog.Default())
		},
	}

	addExportFlags(cmd, &opts)
	return cmd
}
