package report

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeExporter struct {
	tables map[string][]map[string]interface{}
	order  []string
}

func (f *fakeExporter) GetTableNames(ctx context.Context) ([]string, error) {
	return f.order, nil
}

func (f *fakeExporter) GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error) {
	rows := f.tables[tableName]
	columns := []string{"id", "value"}
	return rows, columns, nil
}

type fakeSink struct {
	filename string
	data     []byte
}

func (f *fakeSink) BroadcastDocument(filename string, data []byte) {
	f.filename = filename
	f.data = data
}

type fakeCleaner struct {
	olderThan time.Duration
	deleted   int64
}

func (f *fakeCleaner) DeleteOldBookings(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.olderThan = olderThan
	return f.deleted, nil
}

func TestExportBuildsWorkbook(t *testing.T) {
	exporter := &fakeExporter{
		order: []string{"bookings", "booking_history"},
		tables: map[string][]map[string]interface{}{
			"bookings": {
				{"id": "b-1", "value": "haircut"},
				{"id": "b-2", "value": "manicure"},
			},
			"booking_history": {
				{"id": int64(1), "value": "created"},
			},
		},
	}
	sink := &fakeSink{}
	logger := zerolog.New(io.Discard)

	svc := NewService(Config{}, exporter, NewExcelizeWriter, sink, nil, &logger)
	require.NoError(t, svc.Export(context.Background()))

	require.NotEmpty(t, sink.data)
	assert.Contains(t, sink.filename, ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(sink.data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"bookings", "booking_history"}, f.GetSheetList())

	rows, err := f.GetRows("bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "value"}, rows[0])
	assert.Equal(t, []string{"b-1", "haircut"}, rows[1])
}

func TestCleanupUsesRetention(t *testing.T) {
	cleaner := &fakeCleaner{deleted: 4}
	logger := zerolog.New(io.Discard)

	svc := NewService(Config{DataRetentionDays: 31}, &fakeExporter{}, NewExcelizeWriter, nil, cleaner, &logger)
	require.NoError(t, svc.Cleanup(context.Background()))
	assert.Equal(t, 31*24*time.Hour, cleaner.olderThan)
}

func TestFilenameForPreviousMonth(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, "bookings-2025-05.xlsx", FilenameForPreviousMonth(now))

	jan := time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, "bookings-2024-12.xlsx", FilenameForPreviousMonth(jan))
}

func TestNextFirstOfMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	next := nextFirstOfMonth(now)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 1, 0, 0, time.UTC), next)
}
