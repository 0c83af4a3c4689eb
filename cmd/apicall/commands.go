package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samvad-hq/apicall/internal/app"
	"github.com/samvad-hq/apicall/internal/config"
	"github.com/samvad-hq/apicall/internal/logger"
	"github.com/samvad-hq/apicall/pkg/apicall"
	"github.com/spf13/cobra"
)

type callFlags struct {
	method      string
	headers     []string
	data        string
	credentials string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "apicall",
		Short:         "Call JSON HTTP APIs and report failures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCallCmd(), newEndpointsCmd(), newBatchCmd())
	return root
}

func newCallCmd() *cobra.Command {
	var f callFlags
	cmd := &cobra.Command{
		Use:   "call <address|@endpoint-id>",
		Short: "Perform one call and print the decoded JSON",
		Long: `Perform a single HTTP call and print the decoded JSON body.

Relative addresses resolve against BASE_URL. An argument starting with @
runs the named endpoint from ENDPOINTS_FILE; flags override its settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				if f.timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, f.timeout)
					defer cancel()
				}

				var value any
				if id, ok := strings.CutPrefix(args[0], "@"); ok {
					value, err = rt.CallEndpoint(ctx, id, opts)
				} else {
					value, err = rt.Call(ctx, args[0], opts)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), value)
			})
		},
	}
	cmd.Flags().StringVarP(&f.method, "request", "X", "", "HTTP method (default GET)")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as 'Key: Value' (repeatable)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "Request body; valid JSON is sent as JSON, anything else as text")
	cmd.Flags().StringVar(&f.credentials, "credentials", "", "Cookie policy: omit, same-origin or include")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Abort the call after this long (0 waits indefinitely)")
	return cmd
}

func newEndpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "List configured endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(_ context.Context, rt *app.Runtime) error {
				w := cmd.OutOrStdout()
				for _, ep := range rt.Endpoints() {
					state := "enabled"
					if !ep.EnabledValue() {
						state = "disabled"
					}
					if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ep.ID, ep.Method, ep.URL, state); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type batchLine struct {
	EndpointID string `json:"endpoint_id"`
	Value      any    `json:"value,omitempty"`
	Error      string `json:"error,omitempty"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Call every enabled endpoint and print one JSON line per result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *app.Runtime) error {
				results, runErr := rt.RunBatch(ctx)
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, r := range results {
					line := batchLine{
						EndpointID: r.EndpointID,
						Value:      r.Value,
						ElapsedMs:  r.Elapsed.Milliseconds(),
					}
					if r.Err != nil {
						line.Error = r.Err.Error()
					}
					if err := enc.Encode(line); err != nil {
						return err
					}
				}
				return runErr
			})
		},
	}
}

// withRuntime loads config, starts logging and hands fn a ready runtime.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *app.Runtime) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("apicall starting", "config", cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.WarnObj("runtime close failed", "error", err)
		}
	}()

	return fn(ctx, rt)
}

func (f callFlags) options() (*apicall.Options, error) {
	headers, err := parseHeaders(f.headers)
	if err != nil {
		return nil, err
	}
	opts := &apicall.Options{
		Method:  strings.ToUpper(strings.TrimSpace(f.method)),
		Headers: headers,
	}
	if f.credentials != "" {
		creds, err := apicall.ParseCredentials(f.credentials)
		if err != nil {
			return nil, err
		}
		opts.Credentials = creds
	}
	if f.data != "" {
		body, isJSON := parseBody(f.data)
		opts.Body = body
		if isJSON && !hasHeader(opts.Headers, "Content-Type") {
			if opts.Headers == nil {
				opts.Headers = make(map[string]string, 1)
			}
			opts.Headers["Content-Type"] = "application/json"
		}
	}
	return opts, nil
}

// parseHeaders turns curl-style "Key: Value" pairs into a map.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Key: Value')", h)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// parseBody keeps the body byte-for-byte. Valid JSON is flagged so the
// request can be labelled application/json.
func parseBody(data string) (any, bool) {
	if json.Valid([]byte(data)) {
		return []byte(data), true
	}
	return data, false
}

func hasHeader(headers map[string]string, key string) bool {
	for k := range headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
