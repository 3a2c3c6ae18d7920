// internal/models/identity.go
package models

import "github.com/google/uuid"

// Identity is the acting party of a request: a guest on some device, or a registered user.
type Identity struct {
	UserID   *uuid.UUID `json:"user_id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Role     UserRole   `json:"role,omitempty"`
	DeviceID string     `json:"-"`
}

func GuestIdentity(deviceID string) Identity {
	return Identity{DeviceID: deviceID}
}

func UserIdentity(user *User, deviceID string) Identity {
	id := user.ID
	return Identity{
		UserID:   &id,
		Name:     user.Name,
		Role:     user.Role,
		DeviceID: deviceID,
	}
}

func (i Identity) IsGuest() bool {
	return i.UserID == nil
}

// Guest returns the guest identity sharing this identity's device.
func (i Identity) Guest() Identity {
	return GuestIdentity(i.DeviceID)
}
