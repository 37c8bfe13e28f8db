package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneinflu/nsaconsole-api/internal/models"
	"github.com/oneinflu/nsaconsole-api/internal/store"
)

func newBatchService(t *testing.T) *BatchService {
	t.Helper()
	return NewBatchService(store.NewMemoryKV(), nil, nil)
}

func createTestBatch(t *testing.T, svc *BatchService) *models.Batch {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateBatchRequest{
		Name:     "FAR Jan 25",
		CourseID: "course-far",
		StartsAt: 1735689600000,
	})
	require.NoError(t, err)
	return b
}

func TestBatchCreateStartsDraft(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	assert.Equal(t, models.BatchStatusDraft, b.Status)
	assert.NotEmpty(t, b.ID)
}

func TestBatchSessionsKeepDateOrder(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "third", Date: 3000})
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "first", Date: 1000})
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "second", Date: 2000})
	require.NoError(t, err)

	sessions, err := svc.Sessions(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "first", sessions[0].Title)
	assert.Equal(t, "second", sessions[1].Title)
	assert.Equal(t, "third", sessions[2].Title)
}

func TestBatchManualOrderWinsUntilDateEdit(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	s1, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "a", Date: 1000})
	require.NoError(t, err)
	s2, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "b", Date: 2000})
	require.NoError(t, err)

	ordered, err := svc.ReorderSessions(ctx, b.ID, ReorderSessionsRequest{SessionIDs: []string{s2.ID, s1.ID}})
	require.NoError(t, err)
	assert.Equal(t, s2.ID, ordered[0].ID)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.ManualSessionOrder)

	// A reschedule is a date-changing edit: date order returns.
	_, err = svc.RescheduleSession(ctx, b.ID, s1.ID, RescheduleSessionRequest{Date: 500})
	require.NoError(t, err)

	sessions, err := svc.Sessions(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, sessions[0].ID)

	got, err = svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.ManualSessionOrder)
}

func TestBatchReorderMustBePermutation(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	s1, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "a", Date: 1000})
	require.NoError(t, err)
	_, err = svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "b", Date: 2000})
	require.NoError(t, err)

	_, err = svc.ReorderSessions(ctx, b.ID, ReorderSessionsRequest{SessionIDs: []string{s1.ID}})
	require.Error(t, err)

	_, err = svc.ReorderSessions(ctx, b.ID, ReorderSessionsRequest{SessionIDs: []string{s1.ID, "unknown"}})
	require.Error(t, err)
}

func TestCancelledSessionRejectsCompleted(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	s1, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "a", Date: 1000})
	require.NoError(t, err)

	out, changed, err := svc.TransitionSession(ctx, b.ID, s1.ID, models.SessionStatusCancelled)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, models.SessionStatusCancelled, out.Status)

	out, changed, err = svc.TransitionSession(ctx, b.ID, s1.ID, models.SessionStatusCompleted)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.SessionStatusCancelled, out.Status)
}

func TestRescheduleTerminalSessionFails(t *testing.T) {
	svc := newBatchService(t)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	s1, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "a", Date: 1000})
	require.NoError(t, err)
	_, changed, err := svc.TransitionSession(ctx, b.ID, s1.ID, models.SessionStatusCompleted)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = svc.RescheduleSession(ctx, b.ID, s1.ID, RescheduleSessionRequest{Date: 9000})
	require.Error(t, err)
}

func TestBatchDeleteRemovesSessions(t *testing.T) {
	kv := store.NewMemoryKV()
	svc := NewBatchService(kv, nil, nil)
	b := createTestBatch(t, svc)
	ctx := context.Background()

	_, err := svc.AddSession(ctx, b.ID, AddSessionRequest{Title: "a", Date: 1000})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))

	_, err = svc.Get(ctx, b.ID)
	require.Error(t, err)

	_, found, err := kv.Get(ctx, sessionsNamespace(b.ID))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBatchListFiltersAndPaginates(t *testing.T) {
	svc := newBatchService(t)
	ctx := context.Background()

	for i, name := range []string{"FAR Jan", "AUD Feb", "REG Mar"} {
		_, err := svc.Create(ctx, CreateBatchRequest{
			Name:     name,
			CourseID: "course-" + name[:3],
			StartsAt: int64(1000 * (i + 1)),
		})
		require.NoError(t, err)
	}

	list, pagination, err := svc.List(ctx, models.BatchFilter{Search: "far"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "FAR Jan", list[0].Name)
	assert.Equal(t, 1, pagination.TotalCount)

	list, _, err = svc.List(ctx, models.BatchFilter{From: 1500, To: 2500})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "AUD Feb", list[0].Name)

	_, pagination, err = svc.List(ctx, models.BatchFilter{Page: 99, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, pagination.Page)
}
