package ledger

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

func setupLedger(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Delivery{}))

	return NewService(repository.NewDeliveryRepository(db))
}

func TestRecordDelivery(t *testing.T) {
	svc := setupLedger(t)
	date := time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

	delivery, err := svc.RecordDelivery(1, "+911234567890", date, models.DeliveryStatusDelivered)
	require.NoError(t, err)

	assert.Equal(t, uint(1), delivery.SubscriberID)
	assert.Equal(t, models.DeliveryStatusDelivered, delivery.Status)
	// Timestamps are normalized to the calendar day.
	assert.Equal(t, models.DeliveryDay(date), delivery.Date)
}

func TestRecordDeliveryRejectsSecondForSameDay(t *testing.T) {
	svc := setupLedger(t)
	date := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	_, err := svc.RecordDelivery(1, "+911234567890", date, models.DeliveryStatusDelivered)
	require.NoError(t, err)

	// Same day, different clock time, different status: still a duplicate.
	_, err = svc.RecordDelivery(1, "+911234567890", date.Add(10*time.Hour), models.DeliveryStatusMissed)
	assert.ErrorIs(t, err, ErrDuplicateDeliveryDate)

	// A different subscriber on the same day is fine.
	_, err = svc.RecordDelivery(2, "+919999999999", date, models.DeliveryStatusMissed)
	assert.NoError(t, err)

	// The same subscriber on the next day is fine.
	_, err = svc.RecordDelivery(1, "+911234567890", date.Add(24*time.Hour), models.DeliveryStatusMissed)
	assert.NoError(t, err)
}

func TestRecordDeliveryRejectsUnknownStatus(t *testing.T) {
	svc := setupLedger(t)

	_, err := svc.RecordDelivery(1, "+911234567890", time.Now(), "pending")
	assert.ErrorIs(t, err, ErrInvalidDeliveryStatus)
}

func TestCorrectDelivery(t *testing.T) {
	svc := setupLedger(t)
	date := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	delivery, err := svc.RecordDelivery(1, "+911234567890", date, models.DeliveryStatusDelivered)
	require.NoError(t, err)

	corrected, err := svc.CorrectDelivery(delivery.ID, models.DeliveryStatusMissed)
	require.NoError(t, err)

	assert.Equal(t, models.DeliveryStatusMissed, corrected.Status)
	// Identity and date never move on a correction.
	assert.Equal(t, delivery.ID, corrected.ID)
	assert.Equal(t, delivery.SubscriberID, corrected.SubscriberID)
	assert.True(t, corrected.Date.Equal(delivery.Date))
}

func TestCorrectDeliveryUnknownRecord(t *testing.T) {
	svc := setupLedger(t)

	_, err := svc.CorrectDelivery(999, models.DeliveryStatusMissed)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCorrectDeliveryRejectsUnknownStatus(t *testing.T) {
	svc := setupLedger(t)

	_, err := svc.CorrectDelivery(1, "lost")
	assert.ErrorIs(t, err, ErrInvalidDeliveryStatus)
}

func TestRecentForSubscriber(t *testing.T) {
	svc := setupLedger(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		_, err := svc.RecordDelivery(1, "+911234567890", base.Add(time.Duration(i)*24*time.Hour), models.DeliveryStatusDelivered)
		require.NoError(t, err)
	}

	recent, err := svc.RecentForSubscriber(1, 7)
	require.NoError(t, err)
	require.Len(t, recent, 7)

	// Newest first.
	assert.True(t, recent[0].Date.After(recent[6].Date))
	assert.True(t, recent[0].Date.Equal(models.DeliveryDay(base.Add(9*24*time.Hour))))
}

func TestBulkMarkIndependentOutcomes(t *testing.T) {
	svc := setupLedger(t)
	date := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

	// Subscriber 2 already has a record for the day.
	_, err := svc.RecordDelivery(2, "+912222222222", date, models.DeliveryStatusDelivered)
	require.NoError(t, err)

	results := svc.BulkMark(
		[]uint{1, 2, 3},
		[]string{"+911111111111", "+912222222222", "+913333333333"},
		date,
		models.DeliveryStatusDelivered,
	)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Delivery)

	assert.ErrorIs(t, results[1].Err, ErrDuplicateDeliveryDate)
	assert.Nil(t, results[1].Delivery)

	// The failure in the middle must not stop the rest.
	assert.NoError(t, results[2].Err)
	assert.NotNil(t, results[2].Delivery)
}
