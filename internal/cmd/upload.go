package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/dryrun"
	"github.com/singlebase/singlebase-go/internal/filter"
	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
	"github.com/singlebase/singlebase-go/internal/upload"
)

const defaultUploadConcurrency = 4

type uploadOptions struct {
	descriptor      string
	descriptorQuery string
	concurrency     int
}

type uploadRow struct {
	File  string `json:"file"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func newUploadCmd() *cobra.Command {
	opts := &uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to a presigned POST URL",
		Long: `Upload one or more files using a presigned POST descriptor: a JSON
object with a "url" and the form "fields" to send alongside each file.`,
		Example: `  singlebase upload --descriptor presigned.json photo.jpg
  singlebase call storage.presign --json | singlebase upload --descriptor - --descriptor-query .data report.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.descriptor, "descriptor", "", "Descriptor JSON file ('-' for stdin)")
	cmd.Flags().StringVar(&opts.descriptorQuery, "descriptor-query", "", "jq expression selecting the descriptor inside the input")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", defaultUploadConcurrency, "Number of files uploaded at once")
	_ = cmd.MarkFlagRequired("descriptor")
	flagAlias(cmd.Flags(), "descriptor", "desc")

	return cmd
}

func runUpload(cmd *cobra.Command, files []string, opts *uploadOptions) error {
	if opts.concurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	raw, err := readInput(cmd, opts.descriptor)
	if err != nil {
		return err
	}
	if q := strings.TrimSpace(opts.descriptorQuery); q != "" {
		raw, err = filter.ApplyToJSON(raw, q)
		if err != nil {
			return fmt.Errorf("--descriptor-query: %w", err)
		}
	}
	d, err := upload.ParseDescriptor(raw)
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)
	if dryrun.IsEnabled(ctx) {
		return previewUpload(cmd, d, files)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	uploader := upload.New(upload.Options{Timeout: env.Timeout, Metrics: sharedMetrics()})
	defer uploader.Close()

	rows := make([]uploadRow, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(opts.concurrency)
	for i, file := range files {
		g.Go(func() error {
			_, err := uploader.Upload(ctx, file, d)
			rows[i] = uploadRow{File: file, OK: err == nil}
			if err != nil {
				rows[i].Error = err.Error()
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := printUploadRows(cmd, rows); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func previewUpload(cmd *cobra.Command, d upload.Descriptor, files []string) error {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	preview := &dryrun.Preview{
		Action:  fmt.Sprintf("upload %d file(s)", len(files)),
		URL:     d.URL,
		Payload: fields,
		Files:   files,
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			preview.Warnings = append(preview.Warnings, err.Error())
		}
	}

	if isJSON(cmd) {
		return printJSON(cmd, preview)
	}
	return preview.Write(iocontext.GetIO(cmdContext(cmd)).Out)
}

func printUploadRows(cmd *cobra.Command, rows []uploadRow) error {
	ctx := cmdContext(cmd)
	ioStreams := iocontext.GetIO(ctx)
	f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)

	if !f.StartTable("FILE", "STATUS") {
		return f.Output(rows)
	}
	for _, r := range rows {
		status := "uploaded"
		if !r.OK {
			status = "failed"
		}
		f.Row(r.File, status)
	}
	return f.EndTable()
}
