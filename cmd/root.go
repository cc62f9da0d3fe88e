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
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "listran",
	Short: "Marketplace listing localizer",
	Long: `A CLI application that localizes product listings (title, bullet points
and description) for every target marketplace of a record, verifying each
translation and falling back to the source content when it cannot be repaired.

Settings come from listran.yaml (working directory or ~/.listran),
LISTRAN_* environment variables and the flags below, in increasing priority.

Use "listran localize --help" for localization options.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "Config file (default: listran.yaml in . or ~/.listran)")
	f.BoolVarP(&verbose, "verbose", "v", false, "Verbose development logging")

	f.String("backend", "", "Text-generation backend: openrouter, ollama, gemini, google, lambda")
	f.String("model", "", "Model name for the backend")
	f.String("base-url", "", "Backend base URL (openrouter, ollama)")
	f.StringSlice("api-keys", nil, "API keys, rotated on rate limits (comma-separated)")
	f.String("google-credentials", "", "Path to Google Cloud credentials")
	f.String("lambda-function", "", "Lambda function name for the lambda backend")
	f.Int("rpm", 0, "Client-side requests-per-minute cap (0 = unlimited)")

	f.Int("max-attempts", 0, "Attempts per service call (0 = default)")
	f.Duration("stage-delay", 0, "Pause between calls within a marketplace (negative disables)")
	f.Duration("marketplace-delay", 0, "Pause between marketplaces (negative disables)")
	f.Int("workers", 0, "Marketplaces localized concurrently")
	f.String("store", "", "Run history database path")
	f.String("profiles", "", "YAML file replacing the built-in language tables")
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"backend":            "backend",
	"model":              "model",
	"base-url":           "base_url",
	"api-keys":           "api_keys",
	"google-credentials": "google_credentials",
	"lambda-function":    "lambda_function",
	"rpm":                "requests_per_minute",
	"max-attempts":       "max_attempts",
	"stage-delay":        "stage_delay",
	"marketplace-delay":  "marketplace_delay",
	"workers":            "workers",
	"store":              "store_path",
	"profiles":           "profiles_file",
	"verbose":            "verbose",
}

// runTimeout bounds a whole localize run.
const runTimeout = 30 * time.Minute
