package database

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	t.Run("first notification creates a row with count 1", func(t *testing.T) {
		testDB.TruncateAll(t)

		n, err := testDB.RecordNotification("160632", day)
		require.NoError(t, err)
		assert.NotZero(t, n.ID)
		assert.Equal(t, "160632", n.FundID)
		assert.Equal(t, 1, n.NotifyCount)
	})

	t.Run("recording twice increments, never duplicates", func(t *testing.T) {
		testDB.TruncateAll(t)

		first, err := testDB.RecordNotification("160632", day)
		require.NoError(t, err)
		second, err := testDB.RecordNotification("160632", day)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 2, second.NotifyCount)

		var rows int
		err = testDB.GetRawConn().QueryRow(
			`SELECT COUNT(*) FROM fund_notifications WHERE fund_id = '160632'`,
		).Scan(&rows)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
	})

	t.Run("AlreadyNotified flips after recording", func(t *testing.T) {
		testDB.TruncateAll(t)

		notified, err := testDB.AlreadyNotified("501310", day)
		require.NoError(t, err)
		assert.False(t, notified)

		_, err = testDB.RecordNotification("501310", day)
		require.NoError(t, err)

		notified, err = testDB.AlreadyNotified("501310", day)
		require.NoError(t, err)
		assert.True(t, notified)
	})

	t.Run("days are independent", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.RecordNotification("160632", day)
		require.NoError(t, err)

		notified, err := testDB.AlreadyNotified("160632", nextDay)
		require.NoError(t, err)
		assert.False(t, notified)

		n, err := testDB.RecordNotification("160632", nextDay)
		require.NoError(t, err)
		assert.Equal(t, 1, n.NotifyCount)
	})

	t.Run("concurrent recording produces one row", func(t *testing.T) {
		testDB.TruncateAll(t)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := testDB.RecordNotification("164705", day)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var rows, count int
		err := testDB.GetRawConn().QueryRow(
			`SELECT COUNT(*), MAX(notify_count) FROM fund_notifications WHERE fund_id = '164705'`,
		).Scan(&rows, &count)
		require.NoError(t, err)
		assert.Equal(t, 1, rows)
		assert.Equal(t, 8, count)
	})

	t.Run("GetNotificationsByDate returns the day's rows", func(t *testing.T) {
		testDB.TruncateAll(t)

		for _, id := range []string{"160632", "501310", "164705"} {
			_, err := testDB.RecordNotification(id, day)
			require.NoError(t, err)
		}
		_, err := testDB.RecordNotification("161831", nextDay)
		require.NoError(t, err)

		notifications, err := testDB.GetNotificationsByDate(day)
		require.NoError(t, err)
		assert.Len(t, notifications, 3)
		for _, n := range notifications {
			assert.Equal(t, day.Format("2006-01-02"), n.NotifyDate.Format("2006-01-02"))
		}
	})
}
