package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/rfm-segmentation-api/internal/domain"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestHistogramRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	rows := []domain.RFMRow{
		{CustomerID: "C1", Amount: decimal.NewFromInt(20), Frequency: 2, Recency: 0},
		{CustomerID: "C2", Amount: decimal.NewFromInt(6), Frequency: 1, Recency: 5},
		{CustomerID: "C3", Amount: decimal.RequireFromString("-3.5"), Frequency: 7, Recency: 12},
	}

	paths, err := NewHistogramRenderer(30).Render(rows, dir, "uploads/run1")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		domain.MetricRecency:   "uploads/run1/recency_plot.png",
		domain.MetricMonetary:  "uploads/run1/monetary_plot.png",
		domain.MetricFrequency: "uploads/run1/frequency_plot.png",
	}, paths)

	for _, metric := range domain.Metrics {
		name, ok := FileName(metric)
		require.True(t, ok)

		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, pngSignature), metric)
	}
}

func TestHistogramRenderer_EmptyTable(t *testing.T) {
	_, err := NewHistogramRenderer(30).Render(nil, t.TempDir(), "uploads")
	assert.Error(t, err)
}

func TestFileName_UnknownMetric(t *testing.T) {
	_, ok := FileName("elbow")
	assert.False(t, ok)
}
