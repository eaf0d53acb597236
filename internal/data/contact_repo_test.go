package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierweb/atelier-api/internal/domain/model"
	"github.com/atelierweb/atelier-api/internal/testutil"
)

func createTestContact(t *testing.T, db *sql.DB, opts ...func(*model.CreateContactRequest)) *model.Contact {
	t.Helper()
	repo := NewContactRepo(db)
	req := testutil.NewContactRequest().
		WithEmail(fmt.Sprintf("test-%d@example.fr", time.Now().UnixNano())).
		Build()
	for _, opt := range opts {
		opt(req)
	}
	c, err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	return c
}

func TestContactRepo_Create_Get_List_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewContactRepo(db)

		req := testutil.NewContactRequest().
			WithName("Jeanne Martin").
			WithPhone("+33612345678").
			WithBudget("5 000 €").
			Build()
		c, err := repo.Create(ctx, req)
		require.NoError(t, err)
		require.NotEmpty(t, c.ID)
		assert.Equal(t, model.ContactStatusNew, c.Status)
		assert.Equal(t, "Jeanne Martin", c.Name)
		require.NotNil(t, c.BudgetAmount)
		assert.Equal(t, 5000, *c.BudgetAmount)
		assert.NotZero(t, c.CreatedAt)

		// get by id
		got, err := repo.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Email, got.Email)

		// list
		lst, err := repo.List(ctx, model.ContactsListOptions{Limit: 10})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(lst), 1)

		// delete
		deleted, err := repo.Delete(ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = repo.GetByID(ctx, c.ID)
		assert.ErrorIs(t, err, ErrContactNotFound)
	})
}

func TestContactRepo_Create_DefaultsSource(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewContactRepo(db)
		req := testutil.NewContactRequest().WithSource("  ").Build()
		c, err := repo.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "site-vitrine", c.Source)
	})
}

func TestContactRepo_Create_RejectsInvalidRequest(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewContactRepo(db)

		_, err := repo.Create(context.Background(), nil)
		assert.Error(t, err)

		req := testutil.NewContactRequest().WithName("").Build()
		_, err = repo.Create(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestContactRepo_List_Filters(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewContactRepo(db)

		createTestContact(t, db, func(r *model.CreateContactRequest) {
			r.Name = "Amélie Leroy"
			r.Project = model.ProjectCategoryEcommerce
		})
		createTestContact(t, db, func(r *model.CreateContactRequest) {
			r.Name = "Bertrand Morel"
			r.Project = model.ProjectCategoryVitrine
		})

		// filter by project
		ecommerce := model.ProjectCategoryEcommerce
		lst, err := repo.List(ctx, model.ContactsListOptions{Project: &ecommerce})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, "Amélie Leroy", lst[0].Name)

		// free-text search matches name
		q := "bertrand"
		lst, err = repo.List(ctx, model.ContactsListOptions{Q: &q})
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, "Bertrand Morel", lst[0].Name)

		// filter by status
		newStatus := model.ContactStatusNew
		lst, err = repo.List(ctx, model.ContactsListOptions{Status: &newStatus})
		require.NoError(t, err)
		assert.Len(t, lst, 2)

		// count honors the same filters
		count, err := repo.Count(ctx, model.ContactsListOptions{Project: &ecommerce})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestContactRepo_List_NewestFirst(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewContactRepoWithTimeProvider(db, tp)

		first, err := repo.Create(context.Background(), testutil.NewContactRequest().Build())
		require.NoError(t, err)
		tp.AddTime(time.Hour)
		second, err := repo.Create(context.Background(), testutil.NewContactRequest().Build())
		require.NoError(t, err)

		lst, err := repo.List(context.Background(), model.ContactsListOptions{})
		require.NoError(t, err)
		require.Len(t, lst, 2)
		assert.Equal(t, second.ID, lst[0].ID)
		assert.Equal(t, first.ID, lst[1].ID)
	})
}

func TestContactRepo_UpdateStatus(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewContactRepo(db)
		c := createTestContact(t, db)

		// new -> contacted
		updated, err := repo.UpdateStatus(ctx, c.ID, model.ContactStatusContacted)
		require.NoError(t, err)
		assert.Equal(t, model.ContactStatusContacted, updated.Status)
		assert.True(t, updated.UpdatedAt.After(c.UpdatedAt) || updated.UpdatedAt.Equal(c.UpdatedAt))

		// contacted -> converted skips qualification and is refused
		_, err = repo.UpdateStatus(ctx, c.ID, model.ContactStatusConverted)
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)

		// contacted -> qualified -> converted
		_, err = repo.UpdateStatus(ctx, c.ID, model.ContactStatusQualified)
		require.NoError(t, err)
		final, err := repo.UpdateStatus(ctx, c.ID, model.ContactStatusConverted)
		require.NoError(t, err)
		assert.Equal(t, model.ContactStatusConverted, final.Status)

		// unknown contact
		_, err = repo.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", model.ContactStatusClosed)
		assert.ErrorIs(t, err, ErrContactNotFound)
	})
}

func TestContactRepo_DashboardAggregates(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewContactRepo(db)

		createTestContact(t, db, func(r *model.CreateContactRequest) {
			r.Project = model.ProjectCategoryVitrine
		})
		createTestContact(t, db, func(r *model.CreateContactRequest) {
			r.Project = model.ProjectCategoryVitrine
		})
		c := createTestContact(t, db, func(r *model.CreateContactRequest) {
			r.Project = model.ProjectCategorySEO
		})
		_, err := repo.UpdateStatus(ctx, c.ID, model.ContactStatusContacted)
		require.NoError(t, err)

		byStatus, err := repo.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, byStatus[model.ContactStatusNew])
		assert.Equal(t, 1, byStatus[model.ContactStatusContacted])

		byProject, err := repo.CountByProject(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, byProject[model.ProjectCategoryVitrine])
		assert.Equal(t, 1, byProject[model.ProjectCategorySEO])

		monthly, err := repo.MonthlyIntake(ctx, 12)
		require.NoError(t, err)
		require.NotEmpty(t, monthly)
		total := 0
		for _, m := range monthly {
			total += m.Count
		}
		assert.Equal(t, 3, total)
	})
}
