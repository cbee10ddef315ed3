// Package device keeps the identity of this client installation.
package device

import (
	"context"
	"strings"

	"com.aviebrantz.radar-client/pkg/core/store"
	"github.com/google/uuid"
)

// DefaultDeviceType is reported when no device type was set.
const DefaultDeviceType = "Web"

// Profile describes the device in requests. Empty optional fields are
// omitted.
type Profile struct {
	DeviceID    string                 `json:"deviceId"`
	InstallID   string                 `json:"installId"`
	DeviceType  string                 `json:"deviceType"`
	UserID      string                 `json:"userId,omitempty"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Identity struct {
	store *store.Safe
}

func NewIdentity(s *store.Safe) *Identity {
	return &Identity{store: s}
}

// GetID returns the persisted device id, generating and persisting a new
// random one on first use.
func (i *Identity) GetID(ctx context.Context) string {
	if id, ok := i.store.Get(ctx, store.KeyDeviceID); ok {
		return id
	}

	id := uuid.New().String()
	i.store.Set(ctx, store.KeyDeviceID, id, store.Long)
	return id
}

// SetDeviceID overrides the device and install ids. An empty value removes
// the corresponding field.
func (i *Identity) SetDeviceID(ctx context.Context, deviceID, installID string) {
	i.store.Set(ctx, store.KeyDeviceID, strings.TrimSpace(deviceID), store.Long)
	i.store.Set(ctx, store.KeyInstallID, strings.TrimSpace(installID), store.Long)
}

func (i *Identity) SetUserID(ctx context.Context, userID string) {
	i.store.Set(ctx, store.KeyUserID, strings.TrimSpace(userID), store.Long)
}

func (i *Identity) SetDescription(ctx context.Context, description string) {
	i.store.Set(ctx, store.KeyDescription, strings.TrimSpace(description), store.Long)
}

func (i *Identity) SetDeviceType(ctx context.Context, deviceType string) {
	i.store.Set(ctx, store.KeyDeviceType, strings.TrimSpace(deviceType), store.Long)
}

// SetMetadata replaces the device metadata. A nil or empty map removes it.
func (i *Identity) SetMetadata(ctx context.Context, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		i.store.Delete(ctx, store.KeyMetadata)
		return
	}
	i.store.SetJSON(ctx, store.KeyMetadata, metadata, store.Long)
}

// Profile returns the current device profile, generating the device id if
// needed.
func (i *Identity) Profile(ctx context.Context) Profile {
	p := Profile{
		DeviceID:   i.GetID(ctx),
		DeviceType: DefaultDeviceType,
	}
	p.InstallID = p.DeviceID

	if installID, ok := i.store.Get(ctx, store.KeyInstallID); ok {
		p.InstallID = installID
	}
	if deviceType, ok := i.store.Get(ctx, store.KeyDeviceType); ok {
		p.DeviceType = deviceType
	}
	if userID, ok := i.store.Get(ctx, store.KeyUserID); ok {
		p.UserID = userID
	}
	if description, ok := i.store.Get(ctx, store.KeyDescription); ok {
		p.Description = description
	}

	var metadata map[string]interface{}
	if i.store.GetJSON(ctx, store.KeyMetadata, &metadata) {
		p.Metadata = metadata
	}

	return p
}
