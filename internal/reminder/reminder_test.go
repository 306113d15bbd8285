package reminder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func TestRunSendsPerWindow(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := db.New(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	userID, _, err := store.Signup(ctx, "a@x.com", "hunter22", "Ayesha", models.RoleStudent, "21101001", "CSE")
	require.NoError(t, err)

	today := time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)
	// one event per notice window, plus one off-window event
	for _, daysAhead := range []int{14, 7, 1, 3} {
		_, err = store.AddPersonalEvent(ctx, userID,
			today.AddDate(0, 0, daysAhead).Add(10*time.Hour),
			fmt.Sprintf("Event +%dd", daysAhead), "")
		require.NoError(t, err)
	}

	sender := mail.NewConsoleSender()
	require.NoError(t, Run(ctx, store, sender, today))

	sent := sender.Sent()
	require.Len(t, sent, 3)

	bodies := strings.Join([]string{sent[0].Body, sent[1].Body, sent[2].Body}, "\n")
	assert.Contains(t, bodies, "in 2 weeks")
	assert.Contains(t, bodies, "in 1 week")
	assert.Contains(t, bodies, "tomorrow")
	for _, m := range sent {
		assert.Equal(t, "a@x.com", m.To)
		assert.True(t, strings.HasPrefix(m.Subject, "Upcoming Event Reminder: "))
		assert.Contains(t, m.Body, "Hi Ayesha,")
	}
}
