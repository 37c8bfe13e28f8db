package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
	appErrors "github.com/oneinflu/nsaconsole-api/pkg/errors"
	"github.com/oneinflu/nsaconsole-api/pkg/export"
)

// Export formats accepted by the table export endpoints.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered table ready for download.
type ExportFile struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// ExportService renders page tables to CSV or PDF for download.
type ExportService struct {
	kv     store.KV
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(kv store.KV, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		kv:     kv,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Enrollments exports the enrollment table.
func (s *ExportService) Enrollments(ctx context.Context, format string) (*ExportFile, error) {
	items := store.NewCollection[models.Enrollment](s.kv, NamespaceEnrollments, nil, s.logger).Load(ctx)
	data := export.Dataset{
		Title:   "Enrollments",
		Columns: []string{"id", "student", "email", "course", "batch", "final_amount", "paid", "balance", "payment_status", "status"},
	}
	for _, e := range items {
		data.Rows = append(data.Rows, map[string]string{
			"id":             e.ID,
			"student":        e.StudentName,
			"email":          e.StudentEmail,
			"course":         e.CourseID,
			"batch":          e.BatchID,
			"final_amount":   strconv.FormatInt(e.FinalAmount, 10),
			"paid":           strconv.FormatInt(e.AmountPaid, 10),
			"balance":        strconv.FormatInt(e.BalanceDue, 10),
			"payment_status": string(e.PaymentStatus),
			"status":         string(e.Status),
		})
	}
	return s.render(data, "enrollments", format)
}

// Orders exports the order table with its monetary breakdown.
func (s *ExportService) Orders(ctx context.Context, format string) (*ExportFile, error) {
	items := store.NewCollection[models.Order](s.kv, NamespaceOrders, nil, s.logger).Load(ctx)
	data := export.Dataset{
		Title:   "Orders",
		Columns: []string{"id", "enrollment", "base", "discount", "coupon", "payable", "paid", "pending", "gateway_fee", "net", "status"},
	}
	for _, o := range items {
		data.Rows = append(data.Rows, map[string]string{
			"id":          o.ID,
			"enrollment":  o.EnrollmentID,
			"base":        strconv.FormatInt(o.BaseAmount, 10),
			"discount":    strconv.FormatInt(o.Discount, 10),
			"coupon":      strconv.FormatInt(o.CouponDiscount, 10),
			"payable":     strconv.FormatInt(o.Payable, 10),
			"paid":        strconv.FormatInt(o.Paid, 10),
			"pending":     strconv.FormatInt(o.Pending, 10),
			"gateway_fee": strconv.FormatInt(o.GatewayFee, 10),
			"net":         strconv.FormatInt(o.NetSettlement, 10),
			"status":      string(o.Status),
		})
	}
	return s.render(data, "orders", format)
}

// Batches exports the batch table.
func (s *ExportService) Batches(ctx context.Context, format string) (*ExportFile, error) {
	items := store.NewCollection[models.Batch](s.kv, NamespaceBatches, nil, s.logger).Load(ctx)
	data := export.Dataset{
		Title:   "Batches",
		Columns: []string{"id", "name", "course", "starts_at", "ends_at", "status"},
	}
	for _, b := range items {
		data.Rows = append(data.Rows, map[string]string{
			"id":        b.ID,
			"name":      b.Name,
			"course":    b.CourseID,
			"starts_at": formatMillis(b.StartsAt),
			"ends_at":   formatMillis(b.EndsAt),
			"status":    string(b.Status),
		})
	}
	return s.render(data, "batches", format)
}

// Students exports the student roster.
func (s *ExportService) Students(ctx context.Context, format string) (*ExportFile, error) {
	items := store.NewCollection[models.Student](s.kv, NamespaceStudents, nil, s.logger).Load(ctx)
	data := export.Dataset{
		Title:   "Students",
		Columns: []string{"id", "name", "email", "progress_pct"},
	}
	for _, st := range items {
		data.Rows = append(data.Rows, map[string]string{
			"id":           st.ID,
			"name":         st.Name,
			"email":        st.Email,
			"progress_pct": strconv.Itoa(st.ProgressPct),
		})
	}
	return s.render(data, "students", format)
}

func (s *ExportService) render(data export.Dataset, name, format string) (*ExportFile, error) {
	switch format {
	case ExportFormatCSV, "":
		raw, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Bytes: raw, Filename: name + ".csv", ContentType: "text/csv"}, nil
	case ExportFormatPDF:
		raw, err := s.pdf.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Bytes: raw, Filename: name + ".pdf", ContentType: "application/pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}
