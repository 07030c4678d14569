package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/prior-it/directory/transfer"
	"github.com/spf13/cobra"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.vcf>",
	Short: "Add every contact in a spreadsheet or vCard file",
	Long: `Adds one contact per spreadsheet row or vCard.
Records without a name or phone number are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx|file.vcf>",
	Short: "Write every contact to a spreadsheet or vCard file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := transfer.FormatOf(args[0])
	if err != nil {
		return err
	}
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	service, release, err := openService(ctx)
	if err != nil {
		return err
	}
	defer release(ctx)

	var report *transfer.Report
	switch format {
	case transfer.FormatSpreadsheet:
		report, err = transfer.ImportSpreadsheet(ctx, file, service)
	case transfer.FormatVCard:
		report, err = transfer.ImportVCards(ctx, file, service)
	}
	if report != nil {
		printReport(cmd.OutOrStdout(), report)
	}
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := transfer.FormatOf(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	service, release, err := openService(ctx)
	if err != nil {
		return err
	}
	defer release(ctx)

	file, err := os.Create(args[0])
	if err != nil {
		return err
	}

	var exported int
	switch format {
	case transfer.FormatSpreadsheet:
		exported, err = transfer.ExportSpreadsheet(ctx, file, service)
	case transfer.FormatVCard:
		exported, err = transfer.ExportVCards(ctx, file, service)
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), successColor.Sprintf("Exported %d contacts to %s", exported, args[0]))
	return nil
}

func printReport(out io.Writer, report *transfer.Report) {
	fmt.Fprintln(out, successColor.Sprintf("Imported %d of %d contacts", len(report.Imported), report.Total()))
	for _, failure := range report.Failed {
		fmt.Fprintln(out, warningColor.Sprint("  skipped "), failure.Error())
	}
}
