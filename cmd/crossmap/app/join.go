package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/crossmap/internal/export"
	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/score"
)

// joinFlags collects the join command's flag values.
type joinFlags struct {
	masterPath string
	targetPath string
	configPath string

	keys       []string
	algorithms []string
	threshold  int

	stripDigits bool
	keepCase    bool
	keepSpecial bool

	masterColumns []string
	targetColumns []string

	outputPath string
	unusedPath string
	jsonOutput bool
}

func (a *App) newJoinCommand() *cobra.Command {
	flags := &joinFlags{}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a master file against a target file",
		Long: `Join matches every row of the master file against the target file
using the configured key pairs. Key pairs are written master=target and
evaluated in order; each one narrows the candidates of the one before.

The join configuration can also be loaded from a YAML file with
--join-config; explicit flags override nothing in that case, the file
is used as-is.`,
		Example: `  crossmap join --master people.csv --target companies.xlsx --keys name=company_name
  crossmap join --master a.csv --target b.csv --keys "surname=last_name,city=town" --algorithms exact,levenshtein --threshold 85
  crossmap join --master a.csv --target b.csv --join-config join.yaml --output joined.csv --unused leftover.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runJoin(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.masterPath, "master", "", "master dataset file (csv or xlsx)")
	cmd.Flags().StringVar(&flags.targetPath, "target", "", "target dataset file (csv or xlsx)")
	cmd.Flags().StringVar(&flags.configPath, "join-config", "", "join configuration YAML file")
	cmd.Flags().StringSliceVar(&flags.keys, "keys", nil, "key pairs, master=target, most significant first")
	cmd.Flags().StringSliceVar(&flags.algorithms, "algorithms", []string{"exact", "levenshtein"}, "matching algorithms: exact, phonetic, levenshtein, semantic")
	cmd.Flags().IntVar(&flags.threshold, "threshold", match.DefaultThreshold, "edit-distance similarity threshold, 0-100")
	cmd.Flags().BoolVar(&flags.keepCase, "keep-case", false, "skip lowercase folding during normalization")
	cmd.Flags().BoolVar(&flags.keepSpecial, "keep-special", false, "skip special-character stripping during normalization")
	cmd.Flags().BoolVar(&flags.stripDigits, "strip-digits", false, "strip ASCII digits during normalization")
	cmd.Flags().StringSliceVar(&flags.masterColumns, "master-columns", nil, "master columns to copy into the output (default all)")
	cmd.Flags().StringSliceVar(&flags.targetColumns, "target-columns", nil, "target columns to copy into the output (default all)")
	cmd.Flags().StringVar(&flags.outputPath, "output", "", "joined rows output file (default stdout)")
	cmd.Flags().StringVar(&flags.unusedPath, "unused", "", "unused target rows output file")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "write the full result as JSON instead of CSV")

	_ = cmd.MarkFlagRequired("master")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func (a *App) runJoin(cmd *cobra.Command, flags *joinFlags) error {
	cfg, err := flags.joinConfig()
	if err != nil {
		return err
	}

	client, err := a.Client()
	if err != nil {
		return err
	}
	client.OnProgress(func(processed, total int) {
		a.logger.Info().Int("processed", processed).Int("total", total).Msg("matching")
	})

	res, err := client.JoinFiles(cmd.Context(), cfg, flags.masterPath, flags.targetPath)
	if err != nil {
		return err
	}

	a.logger.Info().
		Int("matched", res.Stats.Matched).
		Int("unmatched", res.Stats.Unmatched).
		Int("unused_targets", res.Stats.UnusedTargets).
		Dur("duration", res.Stats.Duration).
		Msg("join finished")

	if err := writeOutput(cmd, flags, res); err != nil {
		return err
	}
	if flags.unusedPath != "" {
		f, err := os.Create(flags.unusedPath)
		if err != nil {
			return errors.WrapIO("create", flags.unusedPath, err)
		}
		defer func() { _ = f.Close() }()
		if err := export.WriteUnusedCSV(f, res); err != nil {
			return err
		}
	}
	return nil
}

// joinConfig builds the join configuration from a YAML file or from flags.
func (f *joinFlags) joinConfig() (*match.Config, error) {
	if f.configPath != "" {
		return match.LoadConfig(f.configPath)
	}

	cfg := match.DefaultConfig()
	cfg.Threshold = f.threshold
	cfg.MasterColumns = f.masterColumns
	cfg.TargetColumns = f.targetColumns
	cfg.Normalize.Lowercase = !f.keepCase
	cfg.Normalize.StripSpecial = !f.keepSpecial
	cfg.Normalize.StripDigits = f.stripDigits

	pairs, err := parseKeyPairs(f.keys)
	if err != nil {
		return nil, err
	}
	cfg.KeyPairs = pairs

	algorithms, err := parseAlgorithms(f.algorithms)
	if err != nil {
		return nil, err
	}
	cfg.Algorithms = algorithms

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseKeyPairs(specs []string) ([]match.KeyPair, error) {
	var pairs []match.KeyPair
	for _, spec := range specs {
		left, right, found := strings.Cut(spec, "=")
		if !found {
			// A bare column name pairs a column with itself.
			right = left
		}
		pairs = append(pairs, match.KeyPair{
			Master: strings.TrimSpace(left),
			Target: strings.TrimSpace(right),
		})
	}
	if len(pairs) == 0 {
		return nil, &errors.ConfigError{Component: "keys", Message: "at least one key pair is required (see --keys)"}
	}
	return pairs, nil
}

func parseAlgorithms(names []string) ([]score.Algorithm, error) {
	var algorithms []score.Algorithm
	for _, name := range names {
		a := score.Algorithm(strings.ToUpper(strings.TrimSpace(name)))
		if !a.Valid() {
			return nil, &errors.ConfigError{
				Component: "algorithms",
				Message:   fmt.Sprintf("unknown algorithm %q", name),
			}
		}
		algorithms = append(algorithms, a)
	}
	return algorithms, nil
}

func writeOutput(cmd *cobra.Command, flags *joinFlags, res *match.Result) error {
	out := cmd.OutOrStdout()
	if flags.outputPath != "" {
		f, err := os.Create(flags.outputPath)
		if err != nil {
			return errors.WrapIO("create", flags.outputPath, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	if flags.jsonOutput {
		return export.WriteJSON(out, res)
	}
	return export.WriteCSV(out, res)
}
