package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/rfm-segmentation-api/infrastructure/plot"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	"github.com/vfg2006/rfm-segmentation-api/internal/rfm"
	"github.com/vfg2006/rfm-segmentation-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type options struct {
	input    string
	output   string
	jsonPath string
	layout   string
	bins     int
	limit    int
	logLevel string
	quiet    bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.input, "input", "", "CSV de transações (obrigatório)")
	flag.StringVar(&opts.output, "output", "rfm-output", "Diretório dos histogramas")
	flag.StringVar(&opts.jsonPath, "json", "", "Grava a tabela RFM em JSON neste arquivo")
	flag.StringVar(&opts.layout, "layout", rfm.DefaultDateLayout, "Layout Go das datas de nota")
	flag.IntVar(&opts.bins, "bins", 30, "Quantidade de barras dos histogramas")
	flag.IntVar(&opts.limit, "limit", 20, "Linhas da tabela impressas no terminal (0 = todas)")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Nível de log")
	flag.BoolVar(&opts.quiet, "quiet", false, "Sem barra de progresso")
	flag.Parse()

	if opts.input == "" {
		fmt.Fprintln(os.Stderr, "Uso: rfm --input data.csv [--output dir] [--json rfm.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log.Configure(opts.logLevel)
	decimal.MarshalJSONWithoutQuotes = true

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logrus.WithField("kind", rfm.KindOf(err)).Fatal(err)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	// Etapas do pipeline mais os histogramas
	bar := progressbar.NewOptions(len(rfm.Stages)+1,
		progressbar.OptionSetDescription("rfm"),
		progressbar.OptionSetVisibility(!opts.quiet),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	pipeline := rfm.NewPipeline(opts.layout)
	pipeline.OnStage = func(stage string) {
		bar.Describe(stage)
		_ = bar.Add(1)
	}

	result, err := pipeline.Run(ctx, opts.input)
	if err != nil {
		return err
	}

	bar.Describe("plots")
	plots, err := plot.NewHistogramRenderer(opts.bins).Render(result.Rows, opts.output, opts.output)
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if opts.jsonPath != "" {
		if err := writeJSON(opts.jsonPath, result.Rows); err != nil {
			return err
		}
	}

	return printSummary(out, result, plots, opts.limit)
}

func writeJSON(path string, rows []domain.RFMRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("erro ao criar %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}
	return nil
}

func printSummary(out io.Writer, result *rfm.Result, plots map[string]string, limit int) error {
	stats := result.Stats
	fmt.Fprintf(out, "Linhas lidas: %d | descartadas: %d | datas ignoradas: %d\n",
		stats.LoadedRows, stats.DroppedRows, stats.UnparsedDates)
	fmt.Fprintf(out, "Clientes: %d | fora da tabela: %d | data de referência: %s\n\n",
		stats.Customers, stats.CustomersDroppedByJoin, result.MaxDate.Format("2006-01-02 15:04"))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CustomerID\tAmount\tFrequency\tRecency\t")
	for i, row := range result.Rows {
		if limit > 0 && i == limit {
			fmt.Fprintf(tw, "... %d clientes omitidos\t\t\t\t\n", len(result.Rows)-limit)
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t\n", row.CustomerID, row.Amount.StringFixed(2), row.Frequency, row.Recency)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, metric := range domain.Metrics {
		fmt.Fprintf(out, "%s: %s\n", metric, plots[metric])
	}
	return nil
}
