package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/singlebase/singlebase-go/internal/auth"
	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
	"github.com/singlebase/singlebase-go/internal/validation"
)

type profileRow struct {
	Name        string `json:"name"`
	Current     bool   `json:"current"`
	APIKey      string `json:"api_key,omitempty"`
	APIURL      string `json:"api_url,omitempty"`
	EndpointKey string `json:"endpoint_key,omitempty"`
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"profiles"},
		Short:   "Manage stored connection profiles",
		Long:    "Profiles hold an API key and endpoint in the OS keyring. The current profile is used when --profile is not given.",
	}
	cmd.AddCommand(newProfileLoginCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileUseCmd())
	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileDeleteCmd())
	return cmd
}

func newProfileLoginCmd() *cobra.Command {
	var (
		apiKey      string
		apiURL      string
		endpointKey string
		headers     []string
		browser     bool
	)

	cmd := &cobra.Command{
		Use:   "login [name]",
		Short: "Save credentials under a profile",
		Long: strings.TrimSpace(`
Save an API key and endpoint to the OS keyring and make the profile current.

When --api-key is omitted the key is read from the terminal without echo,
or from the first line of stdin when stdin is not a terminal.
`),
		Example: strings.TrimSpace(`
  singlebase profile login --endpoint-key my-project
  singlebase profile login staging --api-url https://staging.example.com/api/my-project
  echo "$KEY" | singlebase profile login ci --endpoint-key my-project
  singlebase profile login staging --browser
`),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := config.DefaultProfile
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			}
			if err := validation.ValidateProfileName(name); err != nil {
				return err
			}

			if browser {
				return loginWithBrowser(cmd, name)
			}

			// The global flags double as login inputs.
			apiURL = firstNonEmpty(apiURL, flags.APIURL)
			endpointKey = firstNonEmpty(endpointKey, flags.EndpointKey)
			if apiURL == "" && endpointKey == "" {
				return fmt.Errorf("--endpoint-key or --api-url is required")
			}
			if apiURL != "" {
				if err := validation.ValidateAPIURL(apiURL); err != nil {
					return fmt.Errorf("invalid API URL: %w", err)
				}
			} else if err := validation.ValidateEndpointKey(endpointKey); err != nil {
				return err
			}

			parsedHeaders, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			if strings.TrimSpace(apiKey) == "" {
				apiKey, err = promptAPIKey(cmd)
				if err != nil {
					return err
				}
			}

			if err := config.SaveProfile(name, config.Profile{
				APIKey:      strings.TrimSpace(apiKey),
				APIURL:      apiURL,
				EndpointKey: endpointKey,
				Headers:     parsedHeaders,
			}); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "saved": true})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s saved and selected.\n", name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (prompted when omitted)")
	cmd.Flags().StringVar(&apiURL, "url", "", "Full endpoint URL")
	cmd.Flags().StringVar(&endpointKey, "key", "", "Endpoint key")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Default header sent with every call (key:value, repeatable)")
	cmd.Flags().BoolVar(&browser, "browser", false, "Enter credentials in a local browser form")
	flagAlias(cmd.Flags(), "api-key", "ak")
	cmd.MarkFlagsMutuallyExclusive("browser", "api-key")

	return cmd
}

func loginWithBrowser(cmd *cobra.Command, name string) error {
	server, err := auth.NewSetupServer(name)
	if err != nil {
		return err
	}
	server.Out = iocontext.GetIO(cmdContext(cmd)).ErrOut

	result, err := server.Start(cmdContext(cmd))
	if err != nil {
		return err
	}

	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"profile": result.Name, "saved": true, "url": result.URL})
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s saved and selected.\n", result.Name)
	return nil
}

// promptAPIKey reads the key without echo from a terminal, or as one line
// from non-terminal input.
func promptAPIKey(cmd *cobra.Command) (string, error) {
	ioStreams := iocontext.GetIO(cmdContext(cmd))

	var key string
	if ioStreams.IsInteractive() {
		_, _ = fmt.Fprint(ioStreams.ErrOut, "API key: ")
		raw, err := term.ReadPassword(ioStreams.InFd())
		_, _ = fmt.Fprintln(ioStreams.ErrOut)
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		key = string(raw)
	} else {
		line, err := bufio.NewReader(ioStreams.In).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("--api-key is required when stdin is empty")
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("--api-key is required")
	}
	return key, nil
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored profiles",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			rows := make([]profileRow, 0, len(names))
			for _, name := range names {
				row := profileRow{Name: name, Current: name == current}
				if p, err := config.LoadProfile(name); err == nil {
					row.APIURL = p.APIURL
					row.EndpointKey = p.EndpointKey
				}
				rows = append(rows, row)
			}

			ctx := cmdContext(cmd)
			ioStreams := iocontext.GetIO(ctx)
			f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
			if !f.StartTable("NAME", "CURRENT", "ENDPOINT") {
				return f.Output(rows)
			}
			if len(rows) == 0 {
				_ = f.EndTable()
				f.Empty("No profiles found. Run 'singlebase profile login' to add one.")
				return nil
			}
			for _, r := range rows {
				marker := ""
				if r.Current {
					marker = "*"
				}
				f.Row(r.Name, marker, firstNonEmpty(r.APIURL, r.EndpointKey))
			}
			return f.EndTable()
		}),
	}
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current profile",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := config.SetCurrentProfile(name); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					return profileNotFound(name)
				}
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"current": name})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %s.\n", name)
			return nil
		}),
	}
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show a profile with its API key masked",
		Args:  cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}
			name := firstNonEmpty(argOrEmpty(args), flags.Profile, current)

			p, err := config.LoadProfile(name)
			if err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					return profileNotFound(name)
				}
				return err
			}

			row := profileRow{
				Name:        name,
				Current:     name == current,
				APIKey:      maskSecret(p.APIKey),
				APIURL:      p.APIURL,
				EndpointKey: p.EndpointKey,
			}
			ctx := cmdContext(cmd)
			ioStreams := iocontext.GetIO(ctx)
			f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
			if !f.StartTable("FIELD", "VALUE") {
				return f.Output(row)
			}
			f.Row("name", row.Name)
			f.Row("api_key", row.APIKey)
			if row.APIURL != "" {
				f.Row("api_url", row.APIURL)
			}
			if row.EndpointKey != "" {
				f.Row("endpoint_key", row.EndpointKey)
			}
			for k, v := range p.Headers {
				f.Row("header", k+": "+v)
			}
			return f.EndTable()
		}),
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [name]",
		Aliases: []string{"rm"},
		Short:   "Remove a profile from the keyring",
		Args:    cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := argOrEmpty(args)
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}
			if _, err := config.LoadProfile(name); err != nil {
				if errors.Is(err, config.ErrProfileNotFound) {
					return profileNotFound(name)
				}
				return err
			}
			if err := config.DeleteProfile(name); err != nil {
				return fmt.Errorf("failed to remove profile: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "deleted": true})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed.\n", name)
			return nil
		}),
	}
}

// profileNotFound wraps ErrProfileNotFound with a suggestion when a stored
// profile name is close to name.
func profileNotFound(name string) error {
	names, _ := config.ListProfiles()
	if s := suggest(name, names); s != "" && s != name {
		return fmt.Errorf("%w: %s (did you mean %q?)", config.ErrProfileNotFound, name, s)
	}
	return fmt.Errorf("%w: %s", config.ErrProfileNotFound, name)
}

// maskSecret shows only the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) < 12 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
