package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/singlebase/singlebase-go/internal/api"
	"github.com/singlebase/singlebase-go/internal/apierrors"
	"github.com/singlebase/singlebase-go/internal/auth"
	"github.com/singlebase/singlebase-go/internal/dryrun"
	"github.com/singlebase/singlebase-go/internal/iocontext"
	"github.com/singlebase/singlebase-go/internal/jsonext"
	"github.com/singlebase/singlebase-go/internal/outfmt"
	"github.com/singlebase/singlebase-go/internal/result"
)

type callOptions struct {
	fields      []string
	typedFields []string
	data        string
	input       string
	headers     []string
	bearerToken string
	async       bool
}

func newCallCmd() *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call [op]",
		Short: "Send an operation to the configured endpoint",
		Long: `Send an operation payload and print the result.

The payload is built from --input or --data, then --field and --typed-field
values are set on top. A positional op overrides any "op" in the payload.`,
		Example: `  singlebase call db.find -f collection=articles
  singlebase call db.insert -d '{"collection":"articles","data":{"title":"Hi"}}'
  singlebase call -i payload.json --json --query '.data'
  echo '{"op":"auth.get_user"}' | singlebase call -i - --bearer-token "$TOKEN"`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, args, opts)
		}),
	}

	fs := cmd.Flags()
	fs.StringArrayVarP(&opts.fields, "field", "f", nil, "Set a string field (key=value, repeatable)")
	fs.StringArrayVarP(&opts.typedFields, "typed-field", "F", nil, "Set a JSON-typed field (key=json, repeatable)")
	fs.StringVarP(&opts.data, "data", "d", "", "Payload as a JSON object")
	fs.StringVarP(&opts.input, "input", "i", "", "Read the payload from a file ('-' for stdin)")
	fs.StringArrayVarP(&opts.headers, "header", "H", nil, "Add a request header (key:value, repeatable)")
	fs.StringVar(&opts.bearerToken, "bearer-token", "", "Bearer token for this call (env SINGLEBASE_BEARER_TOKEN)")
	fs.BoolVar(&opts.async, "async", false, "Dispatch in the background and wait for the result")
	cmd.MarkFlagsMutuallyExclusive("data", "input")
	flagAlias(fs, "bearer-token", "token")

	return cmd
}

func runCall(cmd *cobra.Command, args []string, opts *callOptions) error {
	payload, err := buildPayload(cmd, args, opts)
	if err != nil {
		return err
	}
	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	client, resolved, err := newClientFactory().client()
	if err != nil {
		return err
	}

	token := strings.TrimSpace(opts.bearerToken)
	if token == "" {
		token = resolved.BearerToken
	}
	ctx := cmdContext(cmd)
	if dryrun.IsEnabled(ctx) {
		return previewCall(cmd, client, payload, headers, token)
	}
	warnExpiredToken(cmd, token)

	var res *result.Result
	if opts.async {
		res = <-client.CallAsync(ctx, payload, headers, token)
	} else {
		res = client.Call(ctx, payload, headers, token)
	}

	if err := printResult(cmd, res); err != nil {
		return err
	}
	return resultError(res)
}

// buildPayload merges --input/--data, --field, --typed-field and the op argument.
func buildPayload(cmd *cobra.Command, args []string, opts *callOptions) (api.Payload, error) {
	payload := api.Payload{}

	var raw []byte
	switch {
	case opts.input != "":
		data, err := readInput(cmd, opts.input)
		if err != nil {
			return nil, err
		}
		raw = data
	case opts.data != "":
		raw = []byte(opts.data)
	}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := jsonext.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("payload must be a JSON object: %w", err)
		}
	}

	for _, f := range opts.fields {
		key, value, err := splitPair("field", f, "=")
		if err != nil {
			return nil, err
		}
		payload[key] = value
	}
	for _, f := range opts.typedFields {
		key, value, err := splitPair("typed-field", f, "=")
		if err != nil {
			return nil, err
		}
		payload[key] = parseTypedValue(value)
	}

	if len(args) == 1 {
		payload["op"] = args[0]
	}
	return payload, nil
}

// parseTypedValue decodes value as JSON, keeping it as a string when it is not valid JSON.
func parseTypedValue(value string) any {
	var v any
	if err := jsonext.Unmarshal([]byte(value), &v); err != nil {
		return value
	}
	return v
}

func parseHeaders(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(values))
	for _, h := range values {
		key, value, err := splitPair("header", h, ":")
		if err != nil {
			return nil, err
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

func warnExpiredToken(cmd *cobra.Command, token string) {
	if msg := expiredTokenMessage(token); msg != "" {
		_, _ = fmt.Fprintf(iocontext.GetIO(cmdContext(cmd)).ErrOut, "Warning: %s\n", msg)
	}
}

// expiredTokenMessage returns "" unless token is a JWT that has expired.
func expiredTokenMessage(token string) string {
	if token == "" {
		return ""
	}
	info, err := auth.Inspect(token)
	if err != nil {
		slog.Debug("bearer token not inspected", "error", err)
		return ""
	}
	if !info.Expired(time.Now()) {
		return ""
	}
	return "bearer token expired at " + info.ExpiresAt.Format(time.RFC3339)
}

func previewCall(cmd *cobra.Command, client *api.Client, payload api.Payload, headers map[string]string, token string) error {
	preview := &dryrun.Preview{
		Action:  "call " + payload.Op(),
		URL:     client.URL(),
		Headers: dryrun.RedactHeaders(client.RequestHeaders(headers, token)),
		Payload: payload,
	}
	if err := api.ValidatePayload(payload); err != nil {
		preview.Warnings = append(preview.Warnings, err.Error())
	}
	if msg := expiredTokenMessage(token); msg != "" {
		preview.Warnings = append(preview.Warnings, msg)
	}

	if isJSON(cmd) {
		return printJSON(cmd, preview)
	}
	return preview.Write(iocontext.GetIO(cmdContext(cmd)).Out)
}

func printResult(cmd *cobra.Command, res *result.Result) error {
	if isJSON(cmd) {
		return printJSON(cmd, res)
	}
	if !res.OK {
		return nil
	}
	ioStreams := iocontext.GetIO(cmdContext(cmd))
	if err := printJSON(cmd, res.Data); err != nil {
		return err
	}
	if len(res.Meta) > 0 {
		meta, err := outfmt.Normalize(res.Meta)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(ioStreams.ErrOut, "meta: ")
		return outfmt.WriteJSON(ioStreams.ErrOut, meta, true)
	}
	return nil
}

// resultError converts a failed Result into an error for exit-code mapping.
// Client-side exceptions are reported as transport errors.
func resultError(res *result.Result) error {
	if res.OK {
		return nil
	}
	if msg, ok := strings.CutPrefix(res.Error, "EXCEPTION: "); ok {
		return &apierrors.TransportError{Err: errors.New(msg)}
	}
	return res.Err()
}
