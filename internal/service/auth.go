package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/buddyai/buddy-server-go/internal/config"
	"github.com/buddyai/buddy-server-go/internal/database"
	"github.com/buddyai/buddy-server-go/internal/model"
	"github.com/buddyai/buddy-server-go/internal/repository"
	"github.com/buddyai/buddy-server-go/internal/util"
)

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidVerification = errors.New("invalid or expired verification token")
)

// dummyPasswordHash is compared on sign-in misses so unknown emails cost the
// same bcrypt work as a wrong password.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := util.HashPassword("buddy-sign-in-placeholder")
	if err != nil {
		log.Error().Err(err).Msg("failed to prepare placeholder password hash")
	}
	return hash
})

// VerificationSender delivers the email verification token to the user.
type VerificationSender interface {
	SendVerification(ctx context.Context, email, token string) error
}

// LogVerificationSender writes verification tokens to the log. It stands in
// until a mail provider is configured.
type LogVerificationSender struct{}

func (LogVerificationSender) SendVerification(_ context.Context, email, token string) error {
	log.Info().Str("email", email).Str("token", token).Msg("email verification token issued")
	return nil
}

type SignUpParams struct {
	Name      string
	Email     string
	Password  string
	Image     *string
	IPAddress *string
	UserAgent *string
}

type SignInParams struct {
	Email     string
	Password  string
	IPAddress *string
	UserAgent *string
}

// AuthResult carries the raw session token, which only ever lives in the
// client cookie.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

type AuthService struct {
	db               database.TxRunner
	userRepo         repository.UserRepository
	accountRepo      repository.AccountRepository
	sessionRepo      repository.SessionRepository
	verificationRepo repository.VerificationRepository
	sender           VerificationSender
	sessionSecret    string
	now              func() time.Time
	checkPassword    func(password, hash string) bool
}

func NewAuthService(
	db database.TxRunner,
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	verificationRepo repository.VerificationRepository,
	sender VerificationSender,
	sessionSecret string,
) *AuthService {
	if sender == nil {
		sender = LogVerificationSender{}
	}
	return &AuthService{
		db:               db,
		userRepo:         userRepo,
		accountRepo:      accountRepo,
		sessionRepo:      sessionRepo,
		verificationRepo: verificationRepo,
		sender:           sender,
		sessionSecret:    sessionSecret,
		now:              time.Now,
		checkPassword:    util.CheckPasswordHash,
	}
}

func (s *AuthService) SignUp(ctx context.Context, params SignUpParams) (*AuthResult, error) {
	email := util.NormalizeEmail(params.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := util.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	var user *model.User
	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		user, err = s.userRepo.WithTx(tx).Create(ctx, model.CreateUserParams{
			ID:    newID(),
			Name:  params.Name,
			Email: email,
			Image: params.Image,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if _, err := s.accountRepo.WithTx(tx).Create(ctx, model.CreateAccountParams{
			ID:           newID(),
			AccountID:    user.ID,
			ProviderID:   model.ProviderCredential,
			UserID:       user.ID,
			PasswordHash: &passwordHash,
		}); err != nil {
			return fmt.Errorf("create credential account: %w", err)
		}

		if _, err := s.verificationRepo.WithTx(tx).Create(ctx, model.CreateVerificationParams{
			ID:         newID(),
			Identifier: email,
			ValueHash:  util.HashToken(verificationToken),
			ExpiresAt:  s.now().Add(config.VerificationTTL),
		}); err != nil {
			return fmt.Errorf("create verification: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.sender.SendVerification(ctx, email, verificationToken); err != nil {
		log.Warn().Err(err).Str("userId", user.ID).Msg("failed to send verification email")
	}

	log.Info().Str("userId", user.ID).Msg("user signed up")

	return s.startSession(ctx, user, params.IPAddress, params.UserAgent)
}

func (s *AuthService) SignIn(ctx context.Context, params SignInParams) (*AuthResult, error) {
	email := util.NormalizeEmail(params.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil {
		s.checkPassword(params.Password, dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}

	account, err := s.accountRepo.FindByUserAndProvider(ctx, user.ID, model.ProviderCredential)
	if err != nil {
		return nil, fmt.Errorf("find credential account: %w", err)
	}
	if account == nil || account.Password == nil {
		s.checkPassword(params.Password, dummyPasswordHash())
		return nil, ErrInvalidCredentials
	}

	if !s.checkPassword(params.Password, *account.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user, params.IPAddress, params.UserAgent)
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByTokenHash(ctx, s.hashSessionToken(token))
}

// ValidateSession resolves a raw session token. Unknown or expired tokens
// yield nil values without error.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*model.Session, *model.User, error) {
	if token == "" {
		return nil, nil, nil
	}

	session, err := s.sessionRepo.FindByTokenHash(ctx, s.hashSessionToken(token))
	if err != nil {
		return nil, nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("find session user: %w", err)
	}
	if user == nil {
		return nil, nil, nil
	}

	return session, user, nil
}

// VerifyEmail consumes a verification token and marks the address verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	email = util.NormalizeEmail(email)

	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		verificationRepo := s.verificationRepo.WithTx(tx)

		verification, err := verificationRepo.FindActive(ctx, email, util.HashToken(token))
		if err != nil {
			return fmt.Errorf("find verification: %w", err)
		}
		if verification == nil {
			return ErrInvalidVerification
		}

		if err := verificationRepo.Delete(ctx, verification.ID); err != nil {
			return fmt.Errorf("delete verification: %w", err)
		}

		if err := s.userRepo.WithTx(tx).MarkEmailVerified(ctx, email); err != nil {
			return fmt.Errorf("mark email verified: %w", err)
		}
		return nil
	})
}

func (s *AuthService) startSession(ctx context.Context, user *model.User, ip, userAgent *string) (*AuthResult, error) {
	token, err := util.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	session, err := s.sessionRepo.Create(ctx, model.CreateSessionParams{
		ID:        newID(),
		TokenHash: s.hashSessionToken(token),
		ExpiresAt: now.Add(config.SessionTTL),
		IPAddress: ip,
		UserAgent: userAgent,
		UserID:    user.ID,
		Now:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResult{User: user, Session: session, Token: token}, nil
}

func (s *AuthService) hashSessionToken(token string) string {
	return util.HmacSHA256(s.sessionSecret, token)
}
