// datavet-cli validates dataset statistics against schemas from the
// command line. Documents are JSON files; profile reads xlsx/csv data.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"datavet/adapters/codec"
	"datavet/adapters/excel"
	"datavet/adapters/statsgen"
	"datavet/app"
	"datavet/domain/core"
	"datavet/domain/schema"
	"datavet/internal"
	"datavet/internal/config"
	"datavet/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "datavet-cli",
		Short: "Validate dataset statistics against schemas",
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newInferCmd(),
		newUpdateCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() (*app.ValidationService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return app.NewValidationService(codec.NewJSONCodec(), cfg.Validator, logger), nil
}

func newValidateCmd() *cobra.Command {
	var environment string

	cmd := &cobra.Command{
		Use:   "validate [statistics.json] [schema.json]",
		Short: "Diff a statistics record against a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			statsData, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			schemaData, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			out, err := svc.ValidateBytes(cmd.Context(), statsData, schemaData, environment)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&environment, "environment", "", "environment to validate under (e.g. TRAINING, SERVING)")
	return cmd
}

func newInferCmd() *cobra.Command {
	var maxStringDomainSize int

	cmd := &cobra.Command{
		Use:   "infer [statistics.json]",
		Short: "Infer a schema from a statistics record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			statsData, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			out, err := svc.InferSchemaBytes(cmd.Context(), statsData, maxStringDomainSize)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxStringDomainSize, "max-string-domain-size", 0, "cap on inferred enum domain sizes (0 = default)")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var rawPaths []string
	var enumThreshold int
	var environment string

	cmd := &cobra.Command{
		Use:   "update [schema.json] [statistics.json]",
		Short: "Widen a schema so a statistics record conforms to it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			schemaData, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			statsData, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			var paths []core.Path
			for _, raw := range rawPaths {
				p := core.ParsePath(raw)
				if p.IsEmpty() {
					return fmt.Errorf("--paths contains an empty feature path")
				}
				paths = append(paths, p)
			}

			cfg := schema.InferenceConfig{EnumThreshold: enumThreshold}
			out, err := svc.UpdateSchemaBytes(cmd.Context(), schemaData, statsData, cfg, paths, environment)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&rawPaths, "paths", nil, "restrict the update to these feature paths")
	cmd.Flags().IntVar(&enumThreshold, "enum-threshold", 0, "cap on inferred enum domain sizes (0 = default)")
	cmd.Flags().StringVar(&environment, "environment", "", "environment the statistics were collected under")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var weightColumn string
	var datasetName string

	cmd := &cobra.Command{
		Use:   "profile [data.xlsx|data.csv]",
		Short: "Compute a statistics record from a tabular data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := excel.NewDataReader(args[0])
			reader.WeightColumn = weightColumn
			columns, err := reader.ReadColumns()
			if err != nil {
				return err
			}

			var generator ports.StatisticsGenerator = statsgen.NewGenerator(statsgen.DefaultConfig())
			record, err := generator.Generate(datasetName, columns)
			if err != nil {
				return err
			}
			out, err := codec.NewJSONCodec().EncodeStatistics(record)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&weightColumn, "weight-column", "", "column holding per-example weights")
	cmd.Flags().StringVar(&datasetName, "name", "", "dataset name recorded in the output")
	return cmd
}
