package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

func newTestService(t *testing.T) (*Service, *mail.ConsoleSender) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := db.New(sqlite.Open(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	sender := mail.NewConsoleSender()
	return NewService(store, sender, "test-secret"), sender
}

func TestSignupSendsOtpMail(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	userID, err := svc.Signup(ctx, "a@x.com", "hunter22", "Ayesha", models.RoleStudent, "21101001", "CSE")
	require.NoError(t, err)
	require.NotZero(t, userID)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "a@x.com", sent[0].To)
	assert.Equal(t, "Your OTP for BRACU Routine", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Your OTP is ")
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	userID, err := svc.Signup(ctx, "a@x.com", "hunter22", "Ayesha", models.RoleStudent, "21101001", "CSE")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "a@x.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, res.RequiresOtp)

	var code int
	_, err = fmt.Sscanf(sender.Sent()[0].Body, "Your OTP is %d.", &code)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyOtp(ctx, userID, code))

	res, err = svc.Login(ctx, "a@x.com", "hunter22")
	require.NoError(t, err)
	assert.False(t, res.RequiresOtp)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "Ayesha", res.Profile.Name)
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	access, refresh, err := svc.IssueTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	newAccess, newRefresh, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEmpty(t, newRefresh)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)

	access, _, err := svc.IssueTokens(42)
	require.NoError(t, err)

	_, _, err = svc.Refresh(access)
	assert.Error(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.Refresh("not-a-token")
	assert.Error(t, err)

	// token signed with a different secret
	other := NewService(nil, mail.NewConsoleSender(), "other-secret")
	_, refresh, err := other.IssueTokens(42)
	require.NoError(t, err)
	_, _, err = svc.Refresh(refresh)
	assert.Error(t, err)
}
