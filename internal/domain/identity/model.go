package identity

import (
	"strings"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleLeader = "dirigente"
	RoleCoach  = "profesor"
	RoleMember = "socio"
)

// ManagementRoles may act on other members' lifecycle, billing and attendance.
var ManagementRoles = []string{RoleAdmin, RoleLeader, RoleCoach}

type Member struct {
	ID             int64   `gorm:"primaryKey"`
	Email          string  `gorm:"uniqueIndex;not null"`
	DocumentNumber *string `gorm:"column:document_number;uniqueIndex"`
	FirstName      string  `gorm:"not null;default:''"`
	LastName       string  `gorm:"not null;default:''"`
	PasswordHash   string  `gorm:"column:password_hash;not null"`
	Phone          string  `gorm:"not null;default:''"`
	BirthDate      *time.Time
	ScanToken      string    `gorm:"column:scan_token;uniqueIndex;not null"`
	Active         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Member) TableName() string {
	return "members"
}

func (m Member) DisplayName() string {
	name := strings.TrimSpace(m.FirstName + " " + m.LastName)
	if name == "" {
		return m.Email
	}
	return name
}

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

type MemberRole struct {
	MemberID int64 `gorm:"primaryKey"`
	RoleID   int64 `gorm:"primaryKey"`
}

func (MemberRole) TableName() string {
	return "member_roles"
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID    int64
	Roles []string
}

func (a Actor) HasAnyRole(required ...string) bool {
	return HasAnyRole(a.Roles, required...)
}

func (a Actor) IsManager() bool {
	return HasAnyRole(a.Roles, ManagementRoles...)
}

type MemberWithRoles struct {
	Member Member
	Roles  []string
}

type RegisterInput struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	DocumentNumber string
	Phone          string
	BirthDate      *time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Member    Member
	Roles     []string
}
