package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
)

// setupTestDB connects to TEST_DATABASE_URL and applies the migrations. The
// tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := New(ctx, dsn, PoolOptions{})
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}
	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		for _, table := range []string{"confirmation_tokens", "invoices", "quotes", "customers", "counters"} {
			if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
				t.Logf("failed to clean table %s: %v", table, err)
			}
		}
		db.Close()
	})
	return db
}

func seedCustomer(t *testing.T, db *DB) customer.Customer {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	move := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	c := customer.Customer{
		ID:        uuid.NewString(),
		Number:    "K" + uuid.NewString()[:8],
		Name:      "Max Mueller",
		Phone:     "+49301234567",
		Email:     "max@example.de",
		Apartment: customer.Apartment{Rooms: 3, Area: 60},
		MoveDate:  &move,
		Source:    customer.SourceManual,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewCustomerRepository(db).Create(context.Background(), c))
	return c
}

func TestCustomerRepository_FindDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)
	stored := seedCustomer(t, db)

	byEmail, err := repo.FindDuplicate(ctx, customer.DuplicateQuery{Email: "MAX@example.de"})
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, stored.ID, byEmail.ID)

	move := *stored.MoveDate
	byName, err := repo.FindDuplicate(ctx, customer.DuplicateQuery{Name: "max mueller", MoveDate: &move})
	require.NoError(t, err)
	require.NotNil(t, byName)

	other := move.AddDate(0, 0, 1)
	none, err := repo.FindDuplicate(ctx, customer.DuplicateQuery{Name: "max mueller", MoveDate: &other})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestQuoteRepository_UpdateKeepsCustomer(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewQuoteRepository(db)
	c := seedCustomer(t, db)

	now := time.Now().UTC().Truncate(time.Microsecond)
	q := quote.Quote{
		ID: uuid.NewString(), CustomerID: c.ID, Number: "AN-" + uuid.NewString()[:8],
		Price: 1380, Status: quote.StatusDraft, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, q))

	price := 1500.0
	updated, err := repo.Update(ctx, c.ID, q.ID, quote.StatusDraft, quote.Patch{Price: &price}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.CustomerID)
	assert.Equal(t, 1500.0, updated.Price)

	_, err = repo.Update(ctx, c.ID, q.ID, quote.StatusSent, quote.Patch{Price: &price}, now)
	_, isConflict := apperrors.IsConflictError(err)
	assert.True(t, isConflict)

	_, err = repo.Update(ctx, "someone-else", q.ID, quote.StatusDraft, quote.Patch{Price: &price}, now)
	_, isNotFound := apperrors.IsNotFoundError(err)
	assert.True(t, isNotFound)
}

func TestTokenRepository_ConsumeOnce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	c := seedCustomer(t, db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	q := quote.Quote{ID: uuid.NewString(), CustomerID: c.ID, Number: "AN-" + uuid.NewString()[:8], Status: quote.StatusSent, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewQuoteRepository(db).Create(ctx, q))

	repo := NewTokenRepository(db)
	_, tok, err := confirmation.Issue(q.ID, now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tok))

	_, err = repo.Consume(ctx, tok.Hash, now)
	require.NoError(t, err)
	_, err = repo.Consume(ctx, tok.Hash, now)
	_, isConflict := apperrors.IsConflictError(err)
	assert.True(t, isConflict)
}

func TestCounter_ConcurrentNextIsUnique(t *testing.T) {
	db := setupTestDB(t)
	counter := NewCounter(db)

	const n = 20
	values := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(context.Background(), "customer", 2025, time.July)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := map[int64]bool{}
	for v := range values {
		assert.False(t, seen[v], "value %d handed out twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
