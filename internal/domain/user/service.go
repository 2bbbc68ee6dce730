package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/caresync/hms/internal/platform/auth"
	"github.com/caresync/hms/pkg/response"
)

type Service struct {
	users  Repository
	tokens *auth.TokenIssuer
}

func NewService(users Repository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// RegisterInput is the payload accepted at registration. Role defaults to
// patient when empty.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`

	Phone            *string  `json:"phone"`
	Gender           *string  `json:"gender"`
	Specialization   *string  `json:"specialization"`
	LicenseNumber    *string  `json:"license_number"`
	BloodGroup       *string  `json:"blood_group"`
	EmergencyContact *string  `json:"emergency_contact"`
	Allergies        []string `json:"allergies"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, response.Validationf("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, response.Validationf("email is required")
	}
	if len(in.Password) < 6 {
		return nil, response.Validationf("password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = RolePatient
	}
	if !ValidRole(in.Role) {
		return nil, response.Validationf("invalid role: " + in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, response.Internalf(err)
	}

	u := &User{
		Name:             strings.TrimSpace(in.Name),
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:     hash,
		Role:             in.Role,
		Phone:            in.Phone,
		Gender:           in.Gender,
		Specialization:   in.Specialization,
		LicenseNumber:    in.LicenseNumber,
		BloodGroup:       in.BloodGroup,
		EmergencyContact: in.EmergencyContact,
		Allergies:        in.Allergies,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, response.Conflictf("email already registered")
		}
		return nil, response.Internalf(err)
	}
	return u, nil
}

// LoginResult bundles the authenticated user with a freshly minted token.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, response.Validationf("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.Unauthorizedf("invalid credentials")
		}
		return nil, response.Internalf(err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, response.Unauthorizedf("invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID.String(), u.Role, u.Name)
	if err != nil {
		return nil, response.Internalf(err)
	}
	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("user not found")
		}
		return nil, response.Internalf(err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	items, total, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

func (s *Service) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	if !ValidRole(role) {
		return nil, 0, response.Validationf("invalid role: " + role)
	}
	items, total, err := s.users.ListByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, 0, response.Internalf(err)
	}
	return items, total, nil
}

// Update applies the allowed fields to an existing user. Role, email, and
// password are immutable through this path.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd.Apply(u)
	if strings.TrimSpace(u.Name) == "" {
		return nil, response.Validationf("name cannot be empty")
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, response.NotFoundf("user not found")
		}
		return nil, response.Internalf(err)
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return response.NotFoundf("user not found")
		}
		return response.Internalf(err)
	}
	return nil
}
