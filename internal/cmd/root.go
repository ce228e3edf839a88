package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/debug"
	"github.com/singlebase/singlebase-go/internal/dryrun"
	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output      string
	JSON        bool
	Query       string
	Compact     bool
	Debug       bool
	DryRun      bool
	Metrics     bool
	Profile     string
	APIURL      string
	EndpointKey string
}

// flags holds the global command flags. It is package-level mutable state
// and is reset at the start of every Execute() call.
var flags = rootFlags{Output: defaultOutput()}

func defaultOutput() string {
	env, err := config.LoadEnv()
	if err != nil || strings.TrimSpace(env.Output) == "" {
		return "text"
	}
	return normalizeOutputFormat(env.Output)
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "ndjson" {
		return "jsonl"
	}
	return value
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Runs before the flag reset so SINGLEBASE_OUTPUT from the file is honored.
	_ = config.LoadDotEnv(config.DotEnvPath())

	flags = rootFlags{Output: defaultOutput()}

	root := &cobra.Command{
		Use:                "singlebase",
		Short:              "Call Singlebase operations and upload files from the command line",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			flags.Output = normalizeOutputFormat(flags.Output)
			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.Query != "" && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--query requires --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}

			ioStreams := iocontext.GetIO(ctx)
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			debug.SetupLogger(ioStreams.ErrOut, flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	ioStreams := iocontext.GetIO(ctx)
	root.SetOut(ioStreams.Out)
	root.SetErr(ioStreams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env SINGLEBASE_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Show the request that would be sent without sending it")
	pf.BoolVar(&flags.Metrics, "metrics", false, "Print call and upload counters to stderr on exit")
	pf.StringVarP(&flags.Profile, "profile", "p", "", "Stored profile to use (env SINGLEBASE_PROFILE)")
	pf.StringVar(&flags.APIURL, "api-url", "", "Full endpoint URL (env SINGLEBASE_API_URL)")
	pf.StringVar(&flags.EndpointKey, "endpoint-key", "", "Endpoint key joined to the base API URL (env SINGLEBASE_ENDPOINT_KEY)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "jq")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "debug", "dbg")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "endpoint-key", "ek")

	root.AddCommand(newCallCmd())
	root.AddCommand(newUploadCmd())
	root.AddCommand(newPresignCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if flags.Metrics {
		writeMetricsSummary(root.ErrOrStderr())
	}
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			var names []string
			for _, c := range root.Commands() {
				if c.IsAvailableCommand() {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggest(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		cmd := targetCmd
		if cmd == nil {
			cmd = root
		}
		var names []string
		collect := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if !f.Hidden {
					names = append(names, "--"+f.Name)
				}
			})
		}
		collect(cmd.Flags())
		collect(cmd.InheritedFlags())

		helpCmd := strings.TrimSpace(cmd.CommandPath()) + " --help"
		if suggestion := suggest(unknown, names); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name such as "--foo" or "-x" from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) < 2 {
		return ""
	}
	return rest
}
