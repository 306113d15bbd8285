package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/db"
	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/mail"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

// Service drives the signup → pending OTP → verified state machine and
// materializes sessions as JWT pairs once an account is verified.
type Service struct {
	store  *db.Store
	sender mail.Sender
	secret []byte
}

func NewService(store *db.Store, sender mail.Sender, jwtSecret string) *Service {
	return &Service{store: store, sender: sender, secret: []byte(jwtSecret)}
}

// Signup registers the account and dispatches the OTP code. Mail delivery is
// best effort and never fails the signup.
func (s *Service) Signup(ctx context.Context, email, password, name string, role int, universityID, department string) (uint, error) {
	userID, otp, err := s.store.Signup(ctx, email, password, name, role, universityID, department)
	if err != nil {
		return 0, err
	}
	subject, body := mail.OTPBody(otp)
	s.sender.Send(email, subject, body)
	return userID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*db.LoginResult, error) {
	return s.store.Login(ctx, email, password)
}

func (s *Service) VerifyOtp(ctx context.Context, userID uint, code int) error {
	return s.store.VerifyOtp(ctx, userID, code)
}

// IssueTokens creates the access/refresh pair for a verified user.
func (s *Service) IssueTokens(userID uint) (access, refresh string, err error) {
	accessClaims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(accessTTL).Unix(),
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(refreshTTL).Unix(),
		"type":    "refresh",
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(refreshToken string) (access, refresh string, err error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return "", "", jwt.ErrTokenInvalidClaims
	}
	return s.IssueTokens(uint(rawID))
}
