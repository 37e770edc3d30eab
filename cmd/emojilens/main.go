package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emojilens/backend/internal/client"
	"github.com/emojilens/backend/internal/middleware"
	"github.com/spf13/cobra"
)

const (
	backendURLEnv   = "BACKEND_URL"
	adminSecretEnv  = "ADMIN_JWT_SECRET"
	defaultTokenTTL = 12 * time.Hour
)

var rootCmd = newRootCmd(os.Stdin, os.Stdout)

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "emojilens",
		Short:         "emojilens - summary, sentiment and emoji highlights for any text",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)

	backend := os.Getenv(backendURLEnv)
	if backend == "" {
		backend = client.DefaultBackendURL
	}
	root.PersistentFlags().String("backend", backend, "Backend base URL (env "+backendURLEnv+")")
	root.PersistentFlags().Duration("timeout", client.DefaultTimeout, "Request timeout")

	root.AddCommand(newAnalyzeCmd(), newHealthCmd(), newAdminTokenCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var text, file, apiKey string

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text from an argument, --text, --file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), args, text, file)
			if err != nil {
				return err
			}

			c, err := backendClient(cmd)
			if err != nil {
				return err
			}
			result, err := c.Analyze(cmd.Context(), input, apiKey)
			if err != nil {
				return err
			}

			client.Render(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to analyze")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read text from file")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key for this request (falls back to the server key)")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := backendClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend status: %s\n", status)
			if status != "ok" {
				return fmt.Errorf("unexpected health status %q", status)
			}
			return nil
		},
	}
}

func newAdminTokenCmd() *cobra.Command {
	var secret, subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issue a bearer token for the /api/admin endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(adminSecretEnv)
			}
			if secret == "" {
				return fmt.Errorf("admin secret not set. Pass --secret or set %s", adminSecretEnv)
			}
			token, err := middleware.IssueAdminToken(secret, subject, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (env "+adminSecretEnv+")")
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "Token lifetime")
	return cmd
}

func backendClient(cmd *cobra.Command) (*client.Client, error) {
	backend, err := cmd.Flags().GetString("backend")
	if err != nil {
		return nil, err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	return client.New(backend, timeout), nil
}

// readInput picks the text from, in order, the positional argument, --text,
// --file, then stdin.
func readInput(stdin io.Reader, args []string, text, file string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case text != "":
		return text, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
