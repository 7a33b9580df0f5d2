package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/pkg/storage"
)

// Exporter writes a summary as CSV to object storage. Suppressed cells
// export as the literal "insufficient" so a spreadsheet can never show
// a small group's mean, not even as an empty cell mistaken for zero.
type Exporter struct {
	s3     *storage.S3
	logger *zap.Logger
}

// NewExporter creates a summary CSV exporter.
func NewExporter(s3 *storage.S3, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{s3: s3, logger: logger}
}

// Export uploads the summary CSV and returns a presigned download URL.
func (e *Exporter) Export(ctx context.Context, tenantID uuid.UUID, summary *Summary) (string, error) {
	var buf bytes.Buffer
	if err := writeCSV(&buf, summary); err != nil {
		return "", fmt.Errorf("build csv: %w", err)
	}

	filename := fmt.Sprintf("pulse-summary-%s-%s.csv",
		summary.From.Format("20060102"), uuid.New().String()[:8])
	key := storage.ExportKey(tenantID.String(), filename)

	if err := e.s3.Upload(ctx, key, "text/csv", &buf); err != nil {
		return "", err
	}
	url, err := e.s3.PresignDownload(ctx, key)
	if err != nil {
		return "", err
	}

	e.logger.Info("summary exported",
		zap.String("tenant_id", tenantID.String()), zap.String("key", key))
	return url, nil
}

func meanCell(mean *float64, insufficient bool) string {
	if insufficient || mean == nil {
		return "insufficient"
	}
	return strconv.FormatFloat(*mean, 'f', 2, 64)
}

func writeCSV(buf *bytes.Buffer, summary *Summary) error {
	w := csv.NewWriter(buf)
	header := []string{"question", "category", "scope", "iso_year", "iso_week", "count", "mean"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, q := range summary.Questions {
		overall := []string{
			q.Prompt, q.Category, "overall", "", "",
			strconv.Itoa(q.Count), meanCell(q.Mean, q.InsufficientData),
		}
		if err := w.Write(overall); err != nil {
			return err
		}
		for _, wk := range q.Weeks {
			row := []string{
				q.Prompt, q.Category, "week",
				strconv.Itoa(wk.ISOYear), strconv.Itoa(wk.ISOWeek),
				strconv.Itoa(wk.Count), meanCell(wk.Mean, wk.InsufficientData),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	participation := []string{
		"participation_rate", "", "overall", "", "",
		strconv.Itoa(summary.Responses) + "/" + strconv.Itoa(summary.Invites),
		strconv.FormatFloat(summary.ParticipationRate, 'f', 3, 64),
	}
	if err := w.Write(participation); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
