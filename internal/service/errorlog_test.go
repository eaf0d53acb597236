package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/mocks"
)

func TestErrorReporter_Report_SwallowsRepoFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockErrorLogRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	reporter := NewErrorReporter(ErrorReporterOptions{Repo: repo})

	// Must not panic or return anything; the loss is logged.
	reporter.Report(context.Background(), &model.CreateErrorEntryRequest{
		Code:    "notification",
		Message: "sink slack delivery failed",
	})
}

func TestErrorReporter_Report_SurvivesCanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockErrorLogRepository(ctrl)
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req *model.CreateErrorEntryRequest) (*model.ErrorEntry, error) {
			require.NoError(t, ctx.Err(), "reporter context must outlive the request context")
			return &model.ErrorEntry{ID: "e-1"}, nil
		})

	reporter := NewErrorReporter(ErrorReporterOptions{Repo: repo})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reporter.Report(ctx, &model.CreateErrorEntryRequest{Message: "late failure"})
}

func TestErrorReporter_Report_NilGuards(t *testing.T) {
	var reporter *ErrorReporter
	reporter.Report(context.Background(), &model.CreateErrorEntryRequest{Message: "x"})

	NewErrorReporter(ErrorReporterOptions{}).Report(context.Background(), nil)
}

func TestErrorReporter_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo := mocks.NewMockErrorLogRepository(ctrl)

	severity := model.ErrorSeverityMedium
	repo.EXPECT().List(ctx, 50, 0, &severity).Return([]*model.ErrorEntry{{ID: "e-1"}}, nil)

	reporter := NewErrorReporter(ErrorReporterOptions{Repo: repo})

	entries, err := reporter.List(ctx, 50, 0, &severity)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestErrorReporter_Purge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo := mocks.NewMockErrorLogRepository(ctrl)
	repo.EXPECT().PurgeOlderThan(ctx, 90).Return(int64(7), nil)

	reporter := NewErrorReporter(ErrorReporterOptions{Repo: repo})

	purged, err := reporter.Purge(ctx, 90)
	require.NoError(t, err)
	assert.Equal(t, int64(7), purged)
}
