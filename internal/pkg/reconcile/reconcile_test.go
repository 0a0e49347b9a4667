package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rsinghal/paperroute/app/models"
	"github.com/rsinghal/paperroute/app/repository"
)

func setupReconcile(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Subscription{}, &models.Payment{}))

	repos := repository.NewRepositories(db)
	return NewService(repos.Payment, repos.Subscription), repos
}

func seedSubscription(t *testing.T, repos *repository.Repositories) *models.Subscription {
	t.Helper()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		SubscriberID:    1,
		SubscriberPhone: "+911234567890",
		PlanID:          "monthly",
		PlanName:        "Monthly",
		StartDate:       now,
		EndDate:         now.Add(30 * 24 * time.Hour),
		Status:          models.SubscriptionStatusActive,
	}
	require.NoError(t, repos.Subscription.Create(sub))
	return sub
}

func TestCaptureConfirmedLinksSubscription(t *testing.T) {
	svc, repos := setupReconcile(t)
	sub := seedSubscription(t, repos)
	paidAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	payment, err := svc.CaptureConfirmed(CaptureInput{
		CaptureRef:      "pay_abc123",
		SubscriberID:    1,
		SubscriberPhone: "+911234567890",
		Amount:          300,
		SubscriptionID:  &sub.ID,
		PaidAt:          paidAt,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, models.PaymentMethodGateway, payment.Method)
	assert.Equal(t, "INR", payment.Currency)
	assert.False(t, payment.NeedsReconciliation)

	stored, err := repos.Subscription.GetByID(sub.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastPaymentAt)
	assert.True(t, stored.LastPaymentAt.Equal(paidAt))
	assert.Equal(t, 300, stored.LastPaymentAmount)
	// A payment never moves the end date.
	assert.True(t, stored.EndDate.Equal(sub.EndDate))
}

func TestCaptureConfirmedWithoutSubscription(t *testing.T) {
	svc, repos := setupReconcile(t)

	payment, err := svc.CaptureConfirmed(CaptureInput{
		CaptureRef:      "pay_nolink",
		SubscriberID:    1,
		SubscriberPhone: "+911234567890",
		Amount:          300,
	})
	require.NoError(t, err)
	assert.False(t, payment.NeedsReconciliation)

	history, err := repos.Payment.RecentBySubscriberID(1, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCaptureConfirmedUnresolvableLinkStillRecords(t *testing.T) {
	svc, repos := setupReconcile(t)
	missing := uint(999)

	payment, err := svc.CaptureConfirmed(CaptureInput{
		CaptureRef:      "pay_orphan",
		SubscriberID:    1,
		SubscriberPhone: "+911234567890",
		Amount:          300,
		SubscriptionID:  &missing,
	})

	// The capture already happened, so the payment must land in the store
	// even though the link failed.
	require.NotNil(t, payment)
	assert.ErrorIs(t, err, ErrReconciliationPending)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	assert.True(t, payment.NeedsReconciliation)

	history, err := repos.Payment.RecentBySubscriberID(1, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "pay_orphan", history[0].CaptureRef)

	queue, err := repos.Payment.ListNeedingReconciliation()
	require.NoError(t, err)
	require.Len(t, queue, 1)
}

func TestCaptureConfirmedRejectsNonPositiveAmount(t *testing.T) {
	svc, repos := setupReconcile(t)

	_, err := svc.CaptureConfirmed(CaptureInput{CaptureRef: "pay_zero", SubscriberID: 1, Amount: 0})
	assert.Error(t, err)

	history, err := repos.Payment.RecentBySubscriberID(1, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryForSubscriberNewestFirst(t *testing.T) {
	svc, _ := setupReconcile(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := svc.CaptureConfirmed(CaptureInput{
			CaptureRef:      "pay_" + string(rune('a'+i)),
			SubscriberID:    1,
			SubscriberPhone: "+911234567890",
			Amount:          100 * (i + 1),
			PaidAt:          base.AddDate(0, i, 0),
		})
		require.NoError(t, err)
	}

	history, err := svc.HistoryForSubscriber(1, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 300, history[0].Amount)
	assert.Equal(t, 200, history[1].Amount)
}
