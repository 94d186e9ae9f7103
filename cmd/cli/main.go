package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nirlamp/app"
	"nirlamp/internal"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nirlamp-cli",
		Short: "Analyze NIR-Online prediction exports and compare lamps against a baseline",
	}

	rootCmd.AddCommand(
		newProductsCmd(),
		newAnalyzeCmd(),
		newReportCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSession parses the export file into a fresh analysis session.
func loadSession(path string) (*app.AnalyzerService, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	svc := app.NewAnalyzerService(internal.NewLogger(internal.LogLevelWarn))
	if err := svc.Load(context.Background(), f); err != nil {
		return nil, err
	}
	return svc, nil
}

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products [export.xml]",
		Short: "List the product tables and instrument serial found in an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadSession(args[0])
			if err != nil {
				return err
			}
			if serial := svc.InstrumentSerial(); serial != "" {
				fmt.Printf("Instrument: %s\n", serial)
			}
			for _, product := range svc.Products() {
				fmt.Println(product)
			}
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var products []string

	cmd := &cobra.Command{
		Use:   "analyze [export.xml]",
		Short: "Run the full comparison pipeline and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadSession(args[0])
			if err != nil {
				return err
			}

			result, err := svc.Analyze(context.Background(), products, nil)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&products, "products", nil, "restrict analysis to the named products (default: all)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var products []string

	cmd := &cobra.Command{
		Use:   "report [export.xml]",
		Short: "Print the fixed-width comparison report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadSession(args[0])
			if err != nil {
				return err
			}
			if _, err := svc.Analyze(context.Background(), products, nil); err != nil {
				return err
			}
			text, err := svc.TextReport()
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&products, "products", nil, "restrict analysis to the named products (default: all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var products []string
	var outDir string

	cmd := &cobra.Command{
		Use:   "export [export.xml]",
		Short: "Write the statistics and comparison tables to an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadSession(args[0])
			if err != nil {
				return err
			}
			if _, err := svc.Analyze(context.Background(), products, nil); err != nil {
				return err
			}

			path := filepath.Join(outDir, svc.ExportFilename("xlsx"))
			if err := svc.ExportWorkbook(path); err != nil {
				return err
			}
			fmt.Printf("Workbook written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&products, "products", nil, "restrict analysis to the named products (default: all)")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the workbook into")
	return cmd
}
