// review-report はレビューのエクスポートファイルを集計してターミナルに表示します。
//
//	review-report [-json] [-keywords 20] [-anomalies weekly] reviews.xlsx
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"review-insight-api/pkg/report"
	"review-insight-api/pkg/services"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("review-report: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("review-report", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "集計結果をJSONで出力")
	keywords := fs.Int("keywords", 20, "表示するキーワード数")
	granularity := fs.String("anomalies", "", "急変検出の粒度 (daily|weekly|monthly)。空なら表示しない")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: review-report [-json] [-keywords N] [-anomalies weekly] <file.xlsx|file.csv>")
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}

	aggregated, err := services.NewReviewPipeline(nil).ProcessFile(filepath.Base(path), data)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(aggregated)
	}
	if err := report.Render(out, aggregated, *keywords); err != nil {
		return err
	}

	if *granularity != "" {
		anomalies, err := services.DetectReviewAnomalies(aggregated.TimeSeriesData, *granularity)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, "\n"+report.AnomalyTable(*granularity, anomalies))
		return err
	}
	return nil
}
