package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/store"
)

func TestExportEnrollmentsCSV(t *testing.T) {
	kv := store.NewMemoryKV()
	enrollments := NewEnrollmentService(kv, nil, nil, nil)
	exports := NewExportService(kv, nil)
	ctx := context.Background()

	_, err := enrollments.Create(ctx, CreateEnrollmentRequest{
		StudentName:  "Asha",
		StudentEmail: "asha@x.com",
		CourseID:     "cfa",
		BatchID:      "b1",
		BasePrice:    20000,
		AmountPaid:   20000,
	})
	require.NoError(t, err)

	file, err := exports.Enrollments(ctx, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "enrollments.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	body := string(file.Bytes)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "payment_status")
	assert.Contains(t, lines[1], "asha@x.com")
	assert.Contains(t, lines[1], "PAID")
}

func TestExportPDFHasContent(t *testing.T) {
	kv := store.NewMemoryKV()
	exports := NewExportService(kv, nil)

	file, err := exports.Batches(context.Background(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "batches.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Bytes), "%PDF"))
}

func TestExportUnknownFormatRejected(t *testing.T) {
	exports := NewExportService(store.NewMemoryKV(), nil)

	_, err := exports.Orders(context.Background(), "xlsx")
	require.Error(t, err)
}

func TestExportDefaultsToCSV(t *testing.T) {
	exports := NewExportService(store.NewMemoryKV(), nil)

	file, err := exports.Students(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "students.csv", file.Filename)
}
