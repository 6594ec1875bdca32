package report

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds report service settings.
type Config struct {
	// DataRetentionDays is how long finished bookings are kept after export.
	DataRetentionDays int

	// ExportOnStart runs an export immediately on Start.
	ExportOnStart bool
}

// TableExporter produces raw table data for the report.
type TableExporter interface {
	GetTableNames(ctx context.Context) ([]string, error)
	GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error)
}

// DocumentSink receives the finished report file.
type DocumentSink interface {
	BroadcastDocument(filename string, data []byte)
}

// DataCleaner removes data past the retention window.
type DataCleaner interface {
	DeleteOldBookings(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Service exports all tables to a spreadsheet on the 1st of every month,
// delivers it to manager chats, and prunes old bookings afterwards.
type Service struct {
	config  Config
	tables  TableExporter
	writer  func() ExcelWriter
	sink    DocumentSink
	cleaner DataCleaner
	logger  *zerolog.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewService(config Config, tables TableExporter, writerFactory func() ExcelWriter, sink DocumentSink, cleaner DataCleaner, logger *zerolog.Logger) *Service {
	if config.DataRetentionDays <= 0 {
		config.DataRetentionDays = 93
	}
	return &Service{
		config:  config,
		tables:  tables,
		writer:  writerFactory,
		sink:    sink,
		cleaner: cleaner,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the monthly scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	if s.config.ExportOnStart {
		go s.runExportAndCleanup()
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Int("retention_days", s.config.DataRetentionDays).Msg("report service started")
}

// Stop gracefully stops the scheduler.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("report service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	nextRun := nextFirstOfMonth(time.Now())
	timer := time.NewTimer(time.Until(nextRun))
	defer timer.Stop()

	s.logger.Info().Time("at", nextRun).Msg("next report scheduled")

	for {
		select {
		case <-s.stopCh:
			return
		case <-timer.C:
			s.runExportAndCleanup()

			nextRun = nextFirstOfMonth(time.Now())
			timer.Reset(time.Until(nextRun))
			s.logger.Info().Time("at", nextRun).Msg("next report scheduled")
		}
	}
}

func nextFirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 1, 0, 1, 0, 0, now.Location())
}

func (s *Service) runExportAndCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := s.Export(ctx); err != nil {
		s.logger.Error().Err(err).Msg("report export failed")
	}
	if err := s.Cleanup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("retention cleanup failed")
	}
}

// Export builds the spreadsheet from every exportable table and delivers it.
func (s *Service) Export(ctx context.Context) error {
	tables, err := s.tables.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("get table names: %w", err)
	}
	if len(tables) == 0 {
		return nil
	}

	excel := s.writer()
	defer excel.Close()

	for _, tableName := range tables {
		data, columns, err := s.tables.GetTableData(ctx, tableName)
		if err != nil {
			s.logger.Error().Err(err).Str("table", tableName).Msg("table export failed")
			continue
		}

		if err := excel.AddSheet(tableName); err != nil {
			s.logger.Error().Err(err).Str("table", tableName).Msg("add sheet failed")
			continue
		}
		if err := excel.WriteHeader(columns); err != nil {
			s.logger.Error().Err(err).Str("table", tableName).Msg("write header failed")
			continue
		}

		for _, row := range data {
			rowData := make([]interface{}, len(columns))
			for i, col := range columns {
				rowData[i] = row[col]
			}
			if err := excel.WriteRow(rowData); err != nil {
				s.logger.Error().Err(err).Str("table", tableName).Msg("write row failed")
			}
		}

		s.logger.Debug().Str("table", tableName).Int("rows", len(data)).Msg("table exported")
	}

	var buf bytes.Buffer
	if err := excel.Save(&buf); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}

	if s.sink != nil {
		filename := FilenameForPreviousMonth(time.Now())
		s.sink.BroadcastDocument(filename, buf.Bytes())
		s.logger.Info().Str("filename", filename).Msg("monthly report sent")
	}
	return nil
}

// Cleanup removes bookings past the retention window.
func (s *Service) Cleanup(ctx context.Context) error {
	if s.cleaner == nil {
		return nil
	}

	retention := time.Duration(s.config.DataRetentionDays) * 24 * time.Hour
	deleted, err := s.cleaner.DeleteOldBookings(ctx, retention)
	if err != nil {
		return fmt.Errorf("delete old bookings: %w", err)
	}

	s.logger.Info().Int64("deleted", deleted).Int("retention_days", s.config.DataRetentionDays).Msg("old bookings pruned")
	return nil
}

// FilenameForPreviousMonth names the report after the month it covers.
func FilenameForPreviousMonth(now time.Time) string {
	prev := now.AddDate(0, -1, 0)
	return fmt.Sprintf("bookings-%s.xlsx", prev.Format("2006-01"))
}
