package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
)

func newStudentService(t *testing.T) *StudentService {
	t.Helper()
	return NewStudentService(store.NewMemoryKV(), nil, nil)
}

func TestStudentCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{Name: "Asha", Email: "asha@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateStudentRequest{Name: "Other", Email: "asha@x.com"})
	require.Error(t, err)
}

func TestStudentProgressIsDerived(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()

	st, err := svc.Create(ctx, CreateStudentRequest{Name: "Asha", Email: "asha@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 0, st.ProgressPct)

	out, err := svc.RecordProgress(ctx, st.ID, ProgressRequest{CompletedSessions: 3, TotalSessions: 12})
	require.NoError(t, err)
	assert.Equal(t, 25, out.ProgressPct)

	// Counter drift beyond the total clamps at 100.
	out, err = svc.RecordProgress(ctx, st.ID, ProgressRequest{CompletedSessions: 20, TotalSessions: 12})
	require.NoError(t, err)
	assert.Equal(t, 100, out.ProgressPct)

	out, err = svc.RecordProgress(ctx, st.ID, ProgressRequest{CompletedSessions: 5, TotalSessions: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ProgressPct)
}

func TestStudentListByCourseMembership(t *testing.T) {
	svc := newStudentService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStudentRequest{Name: "Asha", Email: "asha@x.com", EnrolledCourseIDs: []string{"cfa", "cma"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateStudentRequest{Name: "Binu", Email: "binu@x.com", EnrolledCourseIDs: []string{"cma"}})
	require.NoError(t, err)

	list, _, err := svc.List(ctx, models.StudentFilter{CourseID: "cfa"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)

	list, _, err = svc.List(ctx, models.StudentFilter{Search: "BINU"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Binu", list[0].Name)
}
