// Package plot desenha a distribuição de cada métrica RFM em um histograma PNG
package plot

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
	gonum "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//go:generate mockgen -source=histogram.go -destination=mocks/mock_renderer.go -package=mocks

// Renderer recebe a tabela RFM e devolve, por métrica, o caminho público do PNG
type Renderer interface {
	Render(rows []domain.RFMRow, outputDir, publicDir string) (map[string]string, error)
}

type chart struct {
	file   string
	title  string
	xLabel string
	value  func(domain.RFMRow) float64
}

var charts = map[string]chart{
	domain.MetricRecency: {
		file:   "recency_plot.png",
		title:  "Recency Distribution",
		xLabel: "Recency (Days)",
		value:  func(r domain.RFMRow) float64 { return float64(r.Recency) },
	},
	domain.MetricMonetary: {
		file:   "monetary_plot.png",
		title:  "Monetary Distribution",
		xLabel: "Monetary Value",
		value:  func(r domain.RFMRow) float64 { return r.Amount.InexactFloat64() },
	},
	domain.MetricFrequency: {
		file:   "frequency_plot.png",
		title:  "Frequency Distribution",
		xLabel: "Frequency of Purchases",
		value:  func(r domain.RFMRow) float64 { return float64(r.Frequency) },
	},
}

// FileName retorna o nome do PNG de uma métrica
func FileName(metric string) (string, bool) {
	c, ok := charts[metric]
	return c.file, ok
}

type HistogramRenderer struct {
	Bins   int
	Width  vg.Length
	Height vg.Length
}

func NewHistogramRenderer(bins int) *HistogramRenderer {
	return &HistogramRenderer{
		Bins:   bins,
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Render grava um PNG por métrica em outputDir. O caminho devolvido é
// publicDir/<arquivo>, com barras, para ser usado em URLs.
func (r *HistogramRenderer) Render(rows []domain.RFMRow, outputDir, publicDir string) (map[string]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("plot: tabela RFM vazia")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("plot: erro ao criar diretório %s: %w", outputDir, err)
	}

	paths := make(map[string]string, len(charts))
	for _, metric := range domain.Metrics {
		c := charts[metric]

		values := make(plotter.Values, len(rows))
		for i, row := range rows {
			values[i] = c.value(row)
		}

		if err := r.save(c, values, filepath.Join(outputDir, c.file)); err != nil {
			return nil, fmt.Errorf("plot: erro ao gerar histograma %s: %w", metric, err)
		}
		paths[metric] = path.Join(publicDir, c.file)
	}

	logrus.WithFields(logrus.Fields{
		"output_dir": outputDir,
		"customers":  len(rows),
	}).Debug("Histogramas RFM gerados")

	return paths, nil
}

func (r *HistogramRenderer) save(c chart, values plotter.Values, file string) error {
	p := gonum.New()
	p.Title.Text = c.title
	p.X.Label.Text = c.xLabel
	p.Y.Label.Text = "Frequency"

	hist, err := plotter.NewHist(values, r.Bins)
	if err != nil {
		return err
	}
	p.Add(hist)

	return p.Save(r.Width, r.Height, file)
}
