// settlement-export writes a vendor's settlement report for a date
// range to an xlsx workbook, one row per delivered order.
//
// Usage:
//   DB_* env vars set, then:
//   go run ./cmd/settlement-export --vendor-id 12 --from 2026-08-01 --to 2026-09-01 --out report.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
	"github.com/xmustafa5/b2b-exommmerce-sub003/models"
	"github.com/xmustafa5/b2b-exommmerce-sub003/utils"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

func main() {
	vendorId := flag.Int("vendor-id", 0, "Required: vendor id")
	fromStr := flag.String("from", "", "Required: range start (YYYY-MM-DD, inclusive)")
	toStr := flag.String("to", "", "Required: range end (YYYY-MM-DD, exclusive)")
	out := flag.String("out", "settlement.xlsx", "Output file path")
	flag.Parse()

	if *vendorId == 0 || *fromStr == "" || *toStr == "" {
		fmt.Fprintln(os.Stderr, "--vendor-id, --from and --to are required")
		os.Exit(1)
	}
	from, err := time.Parse(dateLayout, *fromStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --from: %v\n", err)
		os.Exit(1)
	}
	to, err := time.Parse(dateLayout, *toStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --to: %v\n", err)
		os.Exit(1)
	}

	_ = godotenv.Load()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	ctx := utils.SetActorRoleInContext(context.Background(), string(models.RoleAdmin))

	report, err := models.GenerateSettlementReport(ctx, *vendorId, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report generation failed: %v\n", err)
		os.Exit(1)
	}

	if err := writeWorkbook(report, *out); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d orders, net %s\n", *out, len(report.Rows), report.Net.String())
}

func writeWorkbook(report *models.SettlementReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Settlement"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Order #", "Delivered At", "Gross Revenue", "Commission", "Net", "Payout Status"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, row := range report.Rows {
		deliveredAt := ""
		if row.DeliveredAt != nil {
			deliveredAt = row.DeliveredAt.Format(time.RFC3339)
		}
		values := []interface{}{
			row.OrderNumber,
			deliveredAt,
			row.GrossRevenue.String(),
			row.Commission.String(),
			row.Net.String(),
			string(row.PayoutStatus),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	summaryRow := len(report.Rows) + 3
	summary := [][2]interface{}{
		{"Vendor", report.VendorName},
		{"Range", report.From.Format(dateLayout) + " to " + report.To.Format(dateLayout)},
		{"Gross Revenue", report.GrossRevenue.String()},
		{"Commission", report.Commission.String()},
		{"Net", report.Net.String()},
	}
	for i, pair := range summary {
		labelCell, err := excelize.CoordinatesToCellName(1, summaryRow+i)
		if err != nil {
			return err
		}
		valueCell, err := excelize.CoordinatesToCellName(2, summaryRow+i)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, labelCell, pair[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, valueCell, pair[1]); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
