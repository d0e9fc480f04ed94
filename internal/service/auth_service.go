package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"course-commerce/internal/model"
	"course-commerce/internal/repository"
	"course-commerce/internal/ws"
	"course-commerce/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrEmailExists        = errors.New("email already exists")
)

// A session with no heartbeat for this long must log in again.
const sessionIdleTimeout = 30 * time.Minute

type AuthService interface {
	Login(req *LoginRequest) (*Session, error)
	Register(req *RegisterRequest) (*Session, error)
	ResetPassword(req *ResetPasswordRequest) error
	ValidateToken(tokenString string) (*Account, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=16"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// Account is the public view of a user. Students use Email to find their
// ledger rows.
type Account struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	PhoneNumber string      `json:"phone_number"`
	Role        *model.Role `json:"role"`
	Privileges  []string    `json:"privileges"`
	LastSeenAt  *time.Time  `json:"last_seen_at,omitempty"`
}

type Session struct {
	Token string `json:"token"`
	Account
}

type authService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	issuer   *jwt.Issuer
	wsHub    *ws.Hub
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, issuer *jwt.Issuer, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		issuer:   issuer,
		wsHub:    hub,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Login(req *LoginRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(user)
}

// Register creates a STUDENT account and logs it in.
func (s *authService) Register(req *RegisterRequest) (*Session, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByCode(model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("student role: %w", err)
	}

	user := &model.User{
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      &role.ID,
		IsActive:    true,
		Privileges:  role.Privileges,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	user.Role = role
	log.Printf("Student %s registered", user.Email)

	return s.startSession(user)
}

func (s *authService) startSession(user *model.User) (*Session, error) {
	version := uuid.NewString()
	if err := s.userRepo.StartSession(user.ID, version); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	now := s.now()
	user.TokenVersion = version
	user.LastSeenAt = &now

	token, err := s.issuer.Generate(jwt.Subject{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName,
		RoleCode:     user.RoleCode(),
		Privileges:   user.PrivilegeCodes(),
		TokenVersion: version,
	})
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, Account: accountOf(user)}, nil
}

// ResetPassword also rotates the token version, ending every open session.
func (s *authService) ResetPassword(req *ResetPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validate(req); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.ChangePassword(user.ID, user.Password, uuid.NewString()); err != nil {
		return err
	}
	log.Printf("Password changed for %s", user.Email)
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*Account, error) {
	claims, err := s.issuer.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	switch {
	case !user.IsActive:
		return nil, ErrUserInactive
	case user.TokenVersion != claims.TokenVersion:
		return nil, ErrSessionReplaced
	case user.SessionIdle(s.now(), sessionIdleTimeout):
		return nil, ErrSessionTimeout
	}

	account := accountOf(user)
	return &account, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.TouchLastSeen(userID); err != nil {
		return err
	}
	if s.wsHub == nil {
		return nil
	}

	msg, _ := json.Marshal(map[string]interface{}{
		"type":         "user_status_update",
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": s.now(),
	})
	s.wsHub.Send(msg)
	return nil
}

func accountOf(u *model.User) Account {
	return Account{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Privileges:  u.PrivilegeCodes(),
		LastSeenAt:  u.LastSeenAt,
	}
}
