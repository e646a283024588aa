package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/pkg/jwtutil"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/pkg/timeutil"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrEmailExists       = errors.New("email is already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
)

type AuthService struct {
	userRepo      *repository.UserRepository
	sessions      *session.Store
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Name          string
	About         string
	Email         string
	Password      string
	PasswordAgain string
}

type LoginInput struct {
	Email    string
	Password string
	Remember bool
}

type LoginResult struct {
	Token    string
	Remember bool
	User     *model.User
}

func NewAuthService(
	userRepo *repository.UserRepository,
	sessions *session.Store,
	jwtSecret string,
	jwtExpiration time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		sessions:      sessions,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register validates the form, rejects duplicate emails and mismatched
// password confirmations, and creates the user with a bcrypt hash. The
// creation date is rounded to the minute like every record here.
func (s *AuthService) Register(input RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if name == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if input.Password != input.PasswordAgain {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Name:         name,
		About:        strings.TrimSpace(input.About),
		Email:        email,
		PasswordHash: string(hash),
		CreatedDate:  timeutil.RoundToMinute(time.Now()),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and opens a session. Remember selects
// the long-lived session TTL.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.verifyCredentials(input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Create(ctx, user.ID, input.Remember)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Remember: input.Remember, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}

// APIToken verifies the credentials and mints a bearer token for the
// item API.
func (s *AuthService) APIToken(email, password string) (string, error) {
	user, err := s.verifyCredentials(email, password)
	if err != nil {
		return "", err
	}
	return jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

func (s *AuthService) verifyCredentials(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return user, nil
}
