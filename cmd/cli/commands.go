package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/postingrules/internal/adapter/http/dto"
	"github.com/iho/postingrules/internal/infrastructure/config"
	"github.com/iho/postingrules/internal/infrastructure/logger"
	"github.com/iho/postingrules/internal/infrastructure/postgres"
)

func resolveCmd(opts *rootOptions) *cobra.Command {
	var tenantID string
	var req dto.ResolveRequest

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a stored event for a posting date",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ResolutionResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, tenantPath(tenantID, "/resolutions"), req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&req.EventID, "event", "", "Event ID")
	cmd.Flags().StringVar(&req.PostingDate, "date", "", "Posting date (YYYY-MM-DD)")
	markRequired(cmd, "tenant", "event", "date")

	return cmd
}

func previewCmd(opts *rootOptions) *cobra.Command {
	var tenantID, amount string
	var req dto.PreviewRequest

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Resolve an event that is not stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			gross, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			req.Event.GrossAmount = gross

			var resp dto.ResolutionResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, tenantPath(tenantID, "/resolutions/preview"), req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&req.PostingDate, "date", "", "Posting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Event.ID, "id", "preview", "Event ID recorded in the snapshot")
	cmd.Flags().StringVar(&req.Event.EntryType, "type", "", "Entry type (EXPENSE or INCOME)")
	cmd.Flags().StringVar(&req.Event.ProjectRef, "project", "", "Project reference")
	cmd.Flags().StringVar(&amount, "amount", "", "Gross amount")
	cmd.Flags().StringVar(&req.Event.CurrencyCode, "currency", "", "ISO 4217 currency code")
	markRequired(cmd, "tenant", "date", "type", "project", "amount", "currency")

	return cmd
}

func mappingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Mapping configuration operations",
	}

	cmd.AddCommand(mappingsListCmd(opts), mappingsCreateCmd(opts), mappingsValidateCmd(opts))
	return cmd
}

func familyQuery(family string) string {
	if family == "" {
		return ""
	}
	return "?family=" + url.QueryEscape(family)
}

func mappingsListCmd(opts *rootOptions) *cobra.Command {
	var tenantID, family string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List mapping versions of a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp []dto.MappingResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, tenantPath(tenantID, "/mappings/"+familyQuery(family)), nil, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&family, "family", "", "Rule family (defaults to the daily book)")
	markRequired(cmd, "tenant")

	return cmd
}

func mappingsCreateCmd(opts *rootOptions) *cobra.Command {
	var tenantID, effectiveTo string
	var req dto.CreateMappingRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a mapping version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if effectiveTo != "" {
				req.EffectiveTo = &effectiveTo
			}

			var resp dto.MappingResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, tenantPath(tenantID, "/mappings/"), req, &resp); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&req.RuleFamily, "family", "", "Rule family (defaults to the daily book)")
	cmd.Flags().StringVar(&req.Version, "version", "", "Version label")
	cmd.Flags().StringVar(&req.EffectiveFrom, "from", "", "First effective day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&effectiveTo, "to", "", "Last effective day (YYYY-MM-DD), open-ended when empty")
	cmd.Flags().StringVar(&req.ExpenseDebitAccountID, "expense-debit", "", "Expense debit account ID")
	cmd.Flags().StringVar(&req.ExpenseCreditAccountID, "expense-credit", "", "Expense credit account ID")
	cmd.Flags().StringVar(&req.IncomeDebitAccountID, "income-debit", "", "Income debit account ID")
	cmd.Flags().StringVar(&req.IncomeCreditAccountID, "income-credit", "", "Income credit account ID")
	markRequired(cmd, "tenant", "version", "from", "expense-debit", "expense-credit", "income-debit", "income-credit")

	return cmd
}

func mappingsValidateCmd(opts *rootOptions) *cobra.Command {
	var tenantID, family string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report overlapping mapping ranges and account cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ValidationResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, tenantPath(tenantID, "/mappings/validation"+familyQuery(family)), nil, &resp); err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Valid {
				return fmt.Errorf("validation FAILED for tenant %s", tenantID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&family, "family", "", "Rule family (defaults to the daily book)")
	markRequired(cmd, "tenant")

	return cmd
}

// migrator is the part of postgres.Migrator used by the migrate commands.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

var newMigrator = func(databaseURL, path string) migrator {
	log := logger.New(logger.Config{Level: "info", Format: "console", Service: "postingrules-cli"})
	return postgres.NewMigrator(databaseURL, path).WithLogger(log)
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema operations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if path == "" {
				path = cfg.MigrationsPath
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newMigrator(databaseURL, path).Up()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newMigrator(databaseURL, path).Down()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := newMigrator(databaseURL, path).Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.MarkFlagRequired(name)
	}
}
