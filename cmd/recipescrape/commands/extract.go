package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/recipescrape/internal/logger"
	"github.com/jmylchreest/recipescrape/internal/output"
	"github.com/jmylchreest/recipescrape/internal/store"
	"github.com/jmylchreest/recipescrape/pkg/recipe"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.html>...",
	Short: "Extract recipe records from saved HTML files",
	Long: `Run the extractor on local HTML files and print the records.
Nothing is fetched. With --save the records are also written to the
output directory the same way scrape does.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Bool("compact", false, "disable pretty-printing for json")
	flags.String("save", "", "also write <slug>.json records to this directory")

	bindFlags(flags, "output", "format", "compact", "save")
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path := viper.GetString("output"); path != "" {
		f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	writer, err := output.NewWriter(out, format, output.WithPretty(!viper.GetBool("compact")))
	if err != nil {
		return err
	}

	var saver *store.JSONStore
	if dir := viper.GetString("save"); dir != "" {
		if saver, err = store.New(dir); err != nil {
			return err
		}
	}

	failed := 0
	for _, path := range args {
		rec, err := extractFile(path)
		if err != nil {
			logger.Error("extract failed", "file", path, "error", err)
			failed++
			continue
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if saver != nil {
			if _, err := saver.Save(rec); err != nil {
				logger.Warn("record not saved", "file", path, "error", err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func extractFile(path string) (recipe.Recipe, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified input files
	if err != nil {
		return recipe.Recipe{}, err
	}
	return recipe.FromHTML(string(data))
}
