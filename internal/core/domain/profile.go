package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Role tags a profile for display purposes only.
type Role string

const (
	RoleBrand   Role = "brand"
	RoleCreator Role = "creator"
)

// Profile is a write-once identity record shown by clients.
type Profile struct {
	Wallet    common.Address
	Name      string
	Bio       string
	Avatar    string
	Role      Role
	CreatedAt time.Time
}

// NewProfile validates the registration input.
func NewProfile(wallet common.Address, name, bio, avatar string, role Role, now time.Time) (Profile, error) {
	if wallet == (common.Address{}) {
		return Profile{}, ErrInvalidAddress
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrEmptyName
	}
	switch role {
	case RoleBrand, RoleCreator:
	default:
		return Profile{}, ErrInvalidRole
	}
	return Profile{
		Wallet:    wallet,
		Name:      name,
		Bio:       bio,
		Avatar:    avatar,
		Role:      role,
		CreatedAt: now,
	}, nil
}
