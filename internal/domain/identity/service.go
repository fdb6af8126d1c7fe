package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type Service struct {
	repo     Repository
	tokens   TokenIssuer
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*Member, error) {
	email := normalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: first_name and last_name are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member := Member{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(input.Phone),
		BirthDate:    input.BirthDate,
		ScanToken:    uuid.NewString(),
		Active:       true,
	}
	if document := NormalizeDocument(input.DocumentNumber); document != "" {
		member.DocumentNumber = &document
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetMemberByEmail(ctx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}
		if member.DocumentNumber != nil {
			if _, err := tx.GetMemberByDocument(ctx, *member.DocumentNumber); err == nil {
				return ErrDocumentTaken
			} else if !errors.Is(err, ErrMemberNotFound) {
				return err
			}
		}
		return tx.CreateMember(ctx, &member)
	})
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	member, err := s.repo.GetMemberByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !member.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles, err := s.repo.ListRoleNames(ctx, member.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(member.ID, member.Email, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
		Member:    *member,
		Roles:     roles,
	}, nil
}

func (s *Service) Me(ctx context.Context, memberID int64) (*MemberWithRoles, error) {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	roles, err := s.repo.ListRoleNames(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return &MemberWithRoles{Member: *member, Roles: roles}, nil
}

func (s *Service) AssignRole(ctx context.Context, actor Actor, memberID int64, roleName string) ([]string, error) {
	return s.changeRole(ctx, actor, memberID, roleName, true)
}

func (s *Service) RevokeRole(ctx context.Context, actor Actor, memberID int64, roleName string) ([]string, error) {
	return s.changeRole(ctx, actor, memberID, roleName, false)
}

func (s *Service) changeRole(ctx context.Context, actor Actor, memberID int64, roleName string, grant bool) ([]string, error) {
	if !actor.HasAnyRole(RoleAdmin) {
		return nil, ErrForbidden
	}
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	if !IsValidRole(roleName) {
		return nil, ErrRoleNotFound
	}

	var roles []string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetMemberByID(ctx, memberID); err != nil {
			return err
		}
		role, err := tx.GetRoleByName(ctx, roleName)
		if err != nil {
			return err
		}
		if grant {
			if err := tx.AssignRole(ctx, memberID, role.ID); err != nil {
				return err
			}
		} else {
			if _, err := tx.RevokeRole(ctx, memberID, role.ID); err != nil {
				return err
			}
		}
		roles, err = tx.ListRoleNames(ctx, memberID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return roles, nil
}

// NormalizeDocument strips the separators people type into document numbers.
func NormalizeDocument(value string) string {
	value = strings.TrimSpace(value)
	return strings.NewReplacer(".", "", " ", "").Replace(value)
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
