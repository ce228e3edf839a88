package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
	"github.com/singlebase/singlebase-go/internal/presign"
)

type presignOptions struct {
	bucket    string
	key       string
	prefix    string
	endpoint  string
	region    string
	expires   time.Duration
	pathStyle bool
}

func newPresignCmd() *cobra.Command {
	opts := &presignOptions{}

	cmd := &cobra.Command{
		Use:   "presign",
		Short: "Create a presigned POST descriptor for S3-compatible storage",
		Long: `Sign a POST policy for one object and print the descriptor that
'singlebase upload' consumes. Credentials come from the standard AWS chain
(AWS_ACCESS_KEY_ID, AWS_PROFILE, ...).`,
		Example: `  singlebase presign --bucket media --key avatars/me.png --json > descriptor.json
  singlebase presign --bucket media --prefix uploads --endpoint http://localhost:9000 --path-style`,
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return runPresign(cmd, opts)
		}),
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.bucket, "bucket", "", "Target bucket")
	fs.StringVar(&opts.key, "key", "", "Object key (default: <prefix>/YYYY/M/D/<uuid>)")
	fs.StringVar(&opts.prefix, "prefix", "", "Prefix for generated keys")
	fs.StringVar(&opts.endpoint, "endpoint", "", "S3-compatible endpoint URL")
	fs.StringVar(&opts.region, "region", presign.DefaultRegion, "Bucket region")
	fs.DurationVar(&opts.expires, "expires", presign.DefaultExpires, "Descriptor lifetime")
	fs.BoolVar(&opts.pathStyle, "path-style", false, "Use path-style bucket addressing")
	_ = cmd.MarkFlagRequired("bucket")

	return cmd
}

func runPresign(cmd *cobra.Command, opts *presignOptions) error {
	if opts.expires <= 0 {
		return fmt.Errorf("--expires must be positive")
	}

	ctx := cmdContext(cmd)
	p, err := presign.New(ctx, presign.Config{
		Bucket:       opts.bucket,
		Region:       opts.region,
		Endpoint:     opts.endpoint,
		UsePathStyle: opts.pathStyle,
		Expires:      opts.expires,
		KeyPrefix:    opts.prefix,
	})
	if err != nil {
		return err
	}

	d, err := p.PresignPost(ctx, opts.key)
	if err != nil {
		return err
	}

	ioStreams := iocontext.GetIO(ctx)
	f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
	if !f.StartTable("FIELD", "VALUE") {
		return f.Output(d)
	}
	f.Row("url", d.URL)
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.Row(name, d.Fields[name])
	}
	return f.EndTable()
}
