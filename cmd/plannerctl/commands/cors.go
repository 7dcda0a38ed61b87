package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd(open StoreOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update CORS allowed origins and options (stored in database).",
	}
	cmd.AddCommand(newCorsListCmd(open))
	cmd.AddCommand(newCorsSetCmd(open))
	return cmd
}

func newCorsListCmd(open StoreOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStores(cmd, open, func(ctx context.Context, s *Stores) error {
				c, err := s.Cors.Get(ctx)
				if err != nil {
					return fmt.Errorf("get cors config: %w", err)
				}
				out := cmd.OutOrStdout()
				if c == nil {
					fmt.Fprintln(out, "No CORS configuration in database. Use 'cors set' to add one.")
					return nil
				}
				fmt.Fprintln(out, "CORS configuration:")
				fmt.Fprintf(out, "  Allowed origins: %s\n", c.AllowedOrigins)
				fmt.Fprintf(out, "  Allow credentials: %v\n", c.AllowCredentials)
				fmt.Fprintf(out, "  Max-Age: %d\n", c.MaxAge)
				return nil
			})
		},
	}
}

func newCorsSetCmd(open StoreOpener) *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(origins) == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			normalized := strings.Join(middleware.FallbackOrigins(origins), ",")
			return withStores(cmd, open, func(ctx context.Context, s *Stores) error {
				c := &models.CorsConfig{
					AllowedOrigins:   normalized,
					AllowCredentials: allowCreds,
					MaxAge:           maxAge,
				}
				if err := s.Cors.Set(ctx, c); err != nil {
					return fmt.Errorf("set cors config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", false, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}
