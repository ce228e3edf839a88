package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/singlebase/singlebase-go/internal/auth"
	"github.com/singlebase/singlebase-go/internal/config"
	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
)

var errTokenRequired = errors.New("a bearer token is required: pass it as an argument or set SINGLEBASE_BEARER_TOKEN")

type tokenView struct {
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect bearer tokens",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect [token]",
		Short: "Show the subject and expiry of a bearer token",
		Long:  "Decode a JWT bearer token without verifying it. Defaults to SINGLEBASE_BEARER_TOKEN.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunE(runTokenInspect),
	})
	return cmd
}

func runTokenInspect(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		env, err := config.LoadEnv()
		if err != nil {
			return err
		}
		token = env.BearerToken
	}
	if strings.TrimSpace(token) == "" {
		return errTokenRequired
	}

	info, err := auth.Inspect(token)
	if err != nil {
		return err
	}

	view := tokenView{Subject: info.Subject, Issuer: info.Issuer, Expired: info.Expired(time.Now())}
	if !info.IssuedAt.IsZero() {
		view.IssuedAt = &info.IssuedAt
	}
	if !info.ExpiresAt.IsZero() {
		view.ExpiresAt = &info.ExpiresAt
	}

	ctx := cmdContext(cmd)
	ioStreams := iocontext.GetIO(ctx)
	f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
	if !f.StartTable("CLAIM", "VALUE") {
		return f.Output(view)
	}
	f.Row("subject", view.Subject)
	f.Row("issuer", view.Issuer)
	if view.IssuedAt != nil {
		f.Row("issued_at", view.IssuedAt.Format(time.RFC3339))
	}
	if view.ExpiresAt != nil {
		f.Row("expires_at", view.ExpiresAt.Format(time.RFC3339))
	}
	if view.Expired {
		f.Row("expired", "yes")
	} else {
		f.Row("expired", "no")
	}
	return f.EndTable()
}
