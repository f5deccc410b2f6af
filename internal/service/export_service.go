package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/rota"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
	"github.com/shiftwise/rota-api/pkg/export"
	"github.com/shiftwise/rota-api/pkg/storage"
)

// ExportFormat enumerates supported roster export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat resolves a format name, case-insensitively.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "csv":
		return ExportFormatCSV, true
	case "pdf":
		return ExportFormatPDF, true
	}
	return "", false
}

type rosterScheduleSource interface {
	Schedule(ctx context.Context, id string) (*rota.Schedule, *models.Roster, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders saved rosters into downloadable files.
type ExportService struct {
	rosters rosterScheduleSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(rosters rosterScheduleSource, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		rosters: rosters,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders a saved roster and stores the file, returning a signed
// download URL.
func (s *ExportService) Generate(ctx context.Context, rosterID string, format ExportFormat) (*ExportResult, error) {
	schedule, roster, err := s.rosters.Schedule(ctx, rosterID)
	if err != nil {
		return nil, err
	}

	dataset, title := buildRosterDataset(schedule, roster)

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}

	filename := buildExportFilename(roster, format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store roster export")
	}

	token, expiresAt, err := s.signer.Generate(roster.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign roster export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (rosterID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// buildRosterDataset lays the schedule out one row per employee with a column
// per day, followed by the scheduled-versus-budget hour summary rows.
func buildRosterDataset(schedule *rota.Schedule, roster *models.Roster) (export.Dataset, string) {
	columns := make([]string, 0, schedule.NumDays+3)
	columns = append(columns, "Employee", "Role")
	for _, day := range schedule.Days {
		columns = append(columns, fmt.Sprintf("%s %s", day.Weekday[:3], day.Date.Format("2006-01-02")))
	}
	columns = append(columns, "Total Hours")

	rows := make([][]string, 0, len(schedule.Rows)+2)
	for _, row := range schedule.Rows {
		record := make([]string, 0, len(columns))
		record = append(record, row.Name, row.Role)
		for _, shift := range row.Shifts {
			if shift == rota.ShiftNone {
				record = append(record, "")
			} else {
				record = append(record, shift.String())
			}
		}
		record = append(record, fmt.Sprintf("%.1f", row.TotalHours))
		rows = append(rows, record)
	}

	scheduled := []string{"Scheduled Hours", ""}
	budget := []string{"Budget Hours", ""}
	for _, day := range schedule.Days {
		scheduled = append(scheduled, fmt.Sprintf("%.1f", day.ScheduledHours))
		budget = append(budget, fmt.Sprintf("%.1f", day.BudgetHours))
	}
	rows = append(rows, scheduled, budget)

	title := roster.Label
	if title == "" {
		title = fmt.Sprintf("Roster %s", schedule.StartDate.Format("2006-01-02"))
	}
	return export.Dataset{Columns: columns, Rows: rows}, title
}

func buildExportFilename(roster *models.Roster, format ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	labelPart := sanitizeFilename(roster.Label)
	return fmt.Sprintf("roster_%s_%s.%s", labelPart, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
