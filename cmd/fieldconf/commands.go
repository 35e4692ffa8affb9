package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/fieldconf/internal/bootstrap"
	"github.com/creamcroissant/fieldconf/internal/migrations"
	"github.com/creamcroissant/fieldconf/internal/model"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/repository"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// errRejected 表示记录未通过校验，错误信息已经打印。
var errRejected = errors.New("record rejected / 记录未通过校验")

func init() {
	// Validate
	var validateCmd = &cobra.Command{
		Use:   "validate <model> [alias=value ...]",
		Short: "Validate attribute values against a model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			m, err := engine.Registry.Model(args[0])
			if err != nil {
				return err
			}
			values, _, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			rec, err := buildRecord(m, values)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), engine, m, rec)
		},
	}
	rootCmd.AddCommand(validateCmd)

	// Form
	var formID string
	var formValues bool
	var formCmd = &cobra.Command{
		Use:   "form <model> [field ...]",
		Short: "Print form views (or form values) as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			rec, err := loadRecord(cmd.Context(), engine, args[0], formID)
			if err != nil {
				return err
			}
			var out any
			if formValues {
				out, err = engine.Registry.FormoValues(args[0], rec, args[1:]...)
			} else {
				out, err = engine.Registry.FormoFields(args[0], rec, args[1:]...)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	formCmd.Flags().StringVar(&formID, "id", "", "Render against a stored record")
	formCmd.Flags().BoolVar(&formValues, "values", false, "Print form values instead of field views")
	rootCmd.AddCommand(formCmd)

	// Definitions
	var defsScripts bool
	var defsCmd = &cobra.Command{
		Use:   "definitions <model>",
		Short: "Print declarative field definitions as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			m, err := engine.Registry.Model(args[0])
			if err != nil {
				return err
			}
			if defsScripts {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"scripts": m.Scripts(),
					"js_code": m.JSCode(),
				})
			}
			return writeJSON(cmd.OutOrStdout(), m.Definitions())
		},
	}
	defsCmd.Flags().BoolVar(&defsScripts, "scripts", false, "Print client scripts instead of definitions")
	rootCmd.AddCommand(defsCmd)

	// Translate
	var translateCmd = &cobra.Command{
		Use:   "translate <error-path> [error-path ...]",
		Short: "Translate error paths into messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			for _, path := range args {
				msg, err := engine.Registry.TranslateError(lang, path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return nil
		},
	}
	rootCmd.AddCommand(translateCmd)

	// Update
	var updateID string
	var updateCmd = &cobra.Command{
		Use:   "update <model> alias=value [alias=value ...]",
		Short: "Apply values to a stored record, validate and save it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			engine, err := newEngine()
			if err != nil {
				return err
			}
			m, err := engine.Registry.Model(args[0])
			if err != nil {
				return err
			}
			values, order, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			for _, alias := range order {
				if _, err := m.Field(alias); err != nil {
					return err
				}
			}

			store, db, err := engine.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			stored := &repository.StoredRecord{Model: args[0], ID: updateID}
			if updateID != "" {
				found, err := store.Records().Find(ctx, args[0], updateID)
				switch {
				case err == nil:
					stored = found
				case !errors.Is(err, repository.ErrNotFound):
					return err
				}
			}
			rec := stored.Record()
			if err := m.UpdateValues(rec, values); err != nil {
				return err
			}
			if err := report(cmd.OutOrStdout(), engine, m, rec); err != nil {
				return err
			}

			next := repository.FromRecord(args[0], stored.ID, rec)
			if err := store.Records().Save(ctx, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s/%s\n", next.Model, next.ID)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&updateID, "id", "", "Record id (a new id is generated when empty)")
	rootCmd.AddCommand(updateCmd)

	// Models
	var modelsCmd = &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()
			if err != nil {
				return err
			}
			if err := engine.Registry.Preload(); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tTABLE\tFIELDS")
			for _, alias := range engine.Registry.Aliases() {
				m, err := engine.Registry.Model(alias)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", alias, m.TableName(), len(m.Fields()))
			}
			return w.Flush()
		},
	}
	rootCmd.AddCommand(modelsCmd)

	// Migrate
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Record store migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := bootstrap.OpenSQLite(cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return migrations.Up(ctx, db)
			case "down":
				return migrations.Down(ctx, db)
			case "status":
				return migrations.Status(ctx, db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	rootCmd.AddCommand(migrateCmd)
}

// report 校验记录并打印结果；未通过时返回 errRejected。
func report(w io.Writer, engine *bootstrap.Engine, m *model.Config, rec record.Record) error {
	errs, err := m.Validate(rec)
	if err != nil {
		return err
	}
	if errs.Empty() {
		fmt.Fprintln(w, engine.I18n.Translate(lang, "cli.valid", m.Alias()))
		return nil
	}
	fmt.Fprintln(w, engine.I18n.Translate(lang, "cli.invalid", m.Alias(), len(errs)))
	return printErrors(w, engine, errs)
}

func printErrors(w io.Writer, engine *bootstrap.Engine, errs validation.Errors) error {
	grouped, err := engine.Registry.ParseErrors(lang, errs)
	if err != nil {
		return err
	}
	aliases := make([]string, 0, len(grouped))
	for alias := range grouped {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		for _, msg := range grouped[alias] {
			fmt.Fprintf(w, "  %s: %s\n", alias, msg)
		}
	}
	return errRejected
}

// loadRecord 返回存储中的记录；id 为空时返回空记录。
func loadRecord(ctx context.Context, engine *bootstrap.Engine, alias, id string) (record.Record, error) {
	if id == "" {
		return record.New(nil), nil
	}
	store, db, err := engine.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	stored, err := store.Records().Find(ctx, alias, id)
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", alias, id, err)
	}
	return stored.Record(), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
