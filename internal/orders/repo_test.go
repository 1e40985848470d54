package orders

import (
	"context"
	"testing"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/db/models"
	"github.com/arepabuelas/arepabuelas-backend/pkg/enums"
	"github.com/arepabuelas/arepabuelas-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Migrator().DropTable(&models.Payment{}, &models.OrderLineItem{}, &models.Order{}))
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderLineItem{}, &models.Payment{}))

	return db
}

func seedOrder(t *testing.T, repo Repository, email string, status enums.OrderStatus, totalCents int64, createdAt time.Time) *models.Order {
	t.Helper()

	order, err := repo.Create(context.Background(), &models.Order{
		UserEmail:     email,
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
		Status:        status,
		Reference:     "REF-" + uuid.NewString()[:8],
		CreatedAt:     createdAt,
	})
	require.NoError(t, err)

	require.NoError(t, repo.CreateLineItems(context.Background(), []models.OrderLineItem{{
		OrderID:        order.ID,
		ProductID:      uuid.New(),
		Name:           "Arepa Reina Pepiada",
		UnitPriceCents: totalCents,
		Qty:            1,
	}}))

	_, err = repo.CreatePayment(context.Background(), &models.Payment{
		OrderID:    order.ID,
		CardHolder: "ANA PEREZ",
		CardLast4:  "4242",
		CardType:   enums.CardTypeCredit,
	})
	require.NoError(t, err)

	return order
}

func TestListByEmailNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := seedOrder(t, repo, "ana@example.com", enums.OrderStatusSuccessful, 4500, time.Now().Add(-2*time.Hour))
	newer := seedOrder(t, repo, "ana@example.com", enums.OrderStatusSuccessful, 5000, time.Now().Add(-1*time.Hour))
	seedOrder(t, repo, "luis@example.com", enums.OrderStatusSuccessful, 9000, time.Now())

	list, err := repo.ListByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.Equal(t, older.ID, list[1].ID)
	require.Len(t, list[0].LineItems, 1)
	require.NotNil(t, list[0].Payment)
	require.Equal(t, "4242", list[0].Payment.CardLast4)
}

func TestCountSuccessfulByEmail(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	count, err := repo.CountSuccessfulByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Zero(t, count)

	seedOrder(t, repo, "ana@example.com", enums.OrderStatusSuccessful, 4500, time.Now())
	seedOrder(t, repo, "ana@example.com", enums.OrderStatusCancelled, 5000, time.Now())

	count, err = repo.CountSuccessfulByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestListAllPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedOrder(t, repo, "ana@example.com", enums.OrderStatusSuccessful, 1000, time.Now().Add(-time.Duration(i)*time.Minute))
	}

	list, total, err := repo.ListAll(ctx, pagination.Page{Limit: 2, Offset: 0})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, list, 2)
}

func TestServiceGetForUserHidesForeignOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	svc, err := NewService(repo)
	require.NoError(t, err)

	order := seedOrder(t, repo, "ana@example.com", enums.OrderStatusSuccessful, 4500, time.Now())

	view, err := svc.GetForUser(context.Background(), "ana@example.com", order.ID)
	require.NoError(t, err)
	require.Equal(t, order.Reference, view.Reference)
	require.Equal(t, "4242", view.CardLast4)

	_, err = svc.GetForUser(context.Background(), "luis@example.com", order.ID)
	require.Error(t, err)
}
