/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/valpere/listran/internal/store"
)

var (
	runsTitle string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the localization run history",
	Long:  `List, inspect, delete and summarise runs recorded by "listran localize".`,
}

// withStore opens the configured history database for fn.
func withStore(fn func(ctx context.Context, db *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(context.Background(), db)
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, db *store.Store) error {
			runs, err := db.ListRuns(ctx, runsTitle, runsLimit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			data := pterm.TableData{{"ID", "STARTED", "SOURCE", "BACKEND", "OK", "FALLBACK", "DURATION", "TITLE"}}
			for _, r := range runs {
				title := r.ProductTitle
				if len([]rune(title)) > 40 {
					title = string([]rune(title)[:37]) + "..."
				}
				data = append(data, []string{
					r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.SourceLang, r.Backend,
					fmt.Sprint(r.Succeeded), fmt.Sprint(r.Fallbacks), r.Duration.String(), title,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		})
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its bundles and trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, db *store.Store) error {
			run, err := db.GetRun(ctx, args[0])
			if err != nil {
				return err
			}

			pterm.DefaultHeader.WithFullWidth().Println(run.ProductTitle)
			pterm.Printf("Run %s, %s, source %s, backend %s, %s\n\n",
				run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), run.SourceLang, run.Backend, run.Duration)

			for _, b := range run.Bundles {
				status := pterm.Green("translated")
				switch {
				case b.Skipped:
					status = pterm.Gray("skipped")
				case b.FallbackUsed:
					status = pterm.Yellow("fallback: " + b.Reason)
				}
				pterm.Printf("%s (%s) %s, %d retries\n", pterm.LightCyan(b.Marketplace), b.Language, status, b.Retries)
				pterm.Printf("  %s\n", b.Title)
				for _, line := range b.Bullets {
					pterm.Printf("  - %s\n", line)
				}
				pterm.Println()
			}

			if len(run.Debug) > 0 {
				pterm.Println(pterm.Gray(strings.Join(run.Debug, "\n")))
			}
			return nil
		})
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, db *store.Store) error {
			if err := db.DeleteRun(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}
			fmt.Printf("Deleted run: %s\n", args[0])
			return nil
		})
	},
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, db *store.Store) error {
			stats, err := db.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			fmt.Printf("Runs:          %d\n", stats.Runs)
			fmt.Printf("Marketplaces:  %d\n", stats.Bundles)
			fmt.Printf("Translated:    %d\n", stats.Translated)
			fmt.Printf("Fallbacks:     %d\n", stats.Fallbacks)
			fmt.Printf("Skipped:       %d\n", stats.Skipped)
			fmt.Printf("Retries:       %d\n", stats.Retries)
			fmt.Printf("Fallback rate: %.1f%%\n", stats.FallbackRate*100)

			if len(stats.FallbacksByLanguage) > 0 {
				langs := make([]string, 0, len(stats.FallbacksByLanguage))
				for l := range stats.FallbacksByLanguage {
					langs = append(langs, l)
				}
				sort.Strings(langs)
				fmt.Println("Fallbacks by language:")
				for _, l := range langs {
					fmt.Printf("  %s: %d\n", l, stats.FallbacksByLanguage[l])
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsListCmd.Flags().StringVar(&runsTitle, "title", "", "Only runs of this product title")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 = all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsStatsCmd)
}
