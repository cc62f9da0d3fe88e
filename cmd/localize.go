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
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/valpere/listran/internal/config"
	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
	"github.com/valpere/listran/internal/report"
	"github.com/valpere/listran/internal/store"
)

var (
	inputFile    string
	outputFile   string
	sourceLang   string
	reportFile   string
	reportFormat string
	noStore      bool
)

var localizeCmd = &cobra.Command{
	Use:   "localize",
	Short: "Localize a listing record for all its marketplaces",
	Long: `Localize every marketplace listing of a record. Each marketplace gets a
translated title, bullet points and description, or keeps the source content
when translation fails.

The record is read from a JSON or YAML file and written back in the format of
the output file's extension (JSON on stdout by default).

Example:
  listran localize -i product.json -o product.localized.json --report run.md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// stdout may carry the record itself.
		pterm.SetDefaultOutput(os.Stderr)
		logger := newLogger(cfg)
		defer logger.Sync()

		rec, err := readRecord(inputFile)
		if err != nil {
			return err
		}
		if sourceLang != "" {
			rec.SourceLanguage = sourceLang
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()

		gen, err := cfg.Generator(ctx)
		if err != nil {
			return fmt.Errorf("failed to build backend: %w", err)
		}
		orch, err := cfg.Pipeline(gen, logger)
		if err != nil {
			return err
		}

		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Localizing %d marketplaces via %s", len(rec.Listings), gen.Name()))
		res, runErr := orch.Run(ctx, rec)
		if res == nil {
			spinner.Fail(runErr.Error())
			return runErr
		}
		if runErr != nil {
			spinner.Warning("Run aborted, remaining marketplaces kept source content")
		} else {
			spinner.Success(fmt.Sprintf("Localized %d/%d marketplaces", res.Succeeded(), len(res.Outcomes)))
		}

		if err := writeRecord(outputFile, rec); err != nil {
			return err
		}
		printOutcomes(res.Outcomes)

		if reportFile != "" {
			out, err := report.Render(reportFormat, rec, res)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportFile, []byte(out), 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			pterm.Info.Printf("Report written to %s\n", reportFile)
		}

		if !noStore {
			if err := saveRun(cmd.Context(), cfg, rec, res, gen.Name()); err != nil {
				pterm.Warning.Printf("Run not recorded: %v\n", err)
			}
		}

		return runErr
	},
}

func saveRun(ctx context.Context, cfg *config.Config, rec *listing.Record, res *orchestrator.OrchestratorResult, backend string) error {
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	run := store.NewRun(rec, res, backend)
	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	pterm.Info.Printf("Run recorded as %s\n", run.ID)
	return nil
}

// printOutcomes renders the per-marketplace summary on stderr so stdout
// stays a clean record.
func printOutcomes(outcomes []orchestrator.Outcome) {
	data := pterm.TableData{{"Marketplace", "Language", "State", "Retries", "Note"}}
	for _, o := range outcomes {
		note := ""
		switch {
		case o.Skipped:
			note = pterm.Gray("skipped")
		case o.FallbackUsed:
			note = pterm.Yellow("fallback: " + o.Reason)
		}
		state := string(o.State)
		if o.Translated {
			state = pterm.Green(state)
		}
		data = append(data, []string{o.Marketplace, o.Language, state, fmt.Sprint(o.Retries), note})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithWriter(os.Stderr).WithData(data).Render()
}

func init() {
	rootCmd.AddCommand(localizeCmd)

	localizeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input record, JSON or YAML (required)")
	localizeCmd.Flags().StringVarP(&outputFile, "output", "o", "-", "Output record file (- for stdout)")
	localizeCmd.Flags().StringVarP(&sourceLang, "source", "s", "", "Source language code (detected when empty)")
	localizeCmd.Flags().StringVar(&reportFile, "report", "", "Write a run report to this file")
	localizeCmd.Flags().StringVar(&reportFormat, "report-format", "md", "Report format: md, html or txt")
	localizeCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the run in the history database")

	localizeCmd.MarkFlagRequired("input")
}
