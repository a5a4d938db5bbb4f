// Package auth supplies player identities for launches.
package auth

import (
	"crypto/md5"

	"github.com/google/uuid"

	"github.com/mangolauncher/mango/internal/domain"
)

// OfflineProvider issues offline-mode identities: a stable UUID derived from
// the username and a placeholder access token. No network, no account.
type OfflineProvider struct {
	Username string
}

func NewOfflineProvider(username string) *OfflineProvider {
	return &OfflineProvider{Username: username}
}

func (p *OfflineProvider) CurrentIdentity() (domain.Identity, error) {
	return domain.Identity{
		Username:    p.Username,
		UUID:        OfflineUUID(p.Username).String(),
		AccessToken: "0",
		UserType:    "legacy",
	}, nil
}

// OfflineUUID derives the deterministic offline-mode UUID for a username,
// matching the scheme game servers use: a name-based UUID over the string
// "OfflinePlayer:<name>".
func OfflineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))

	var id uuid.UUID
	copy(id[:], sum[:])
	id[6] = (id[6] & 0x0f) | 0x30 // version 3
	id[8] = (id[8] & 0x3f) | 0x80 // RFC 4122 variant

	return id
}
