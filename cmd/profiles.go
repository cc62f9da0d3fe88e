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
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List supported marketplaces and languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := cfg.Profiles()
		if err != nil {
			return err
		}

		data := pterm.TableData{{"MARKETPLACE", "LANGUAGE", "TITLE LENGTH"}}
		for _, id := range table.Marketplaces() {
			code, _ := table.LanguageFor(id)
			limits := table.LimitsFor(id)
			data = append(data, []string{id, code, fmt.Sprintf("%d-%d", limits.Min, limits.Max)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}

		pterm.Println()
		langs := pterm.TableData{{"CODE", "NAME", "TAG", "DIACRITICS"}}
		for _, p := range table.Profiles() {
			langs = append(langs, []string{p.Code, p.Name, p.Tag, strings.TrimSpace(p.Diacritics)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(langs).Render()
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
