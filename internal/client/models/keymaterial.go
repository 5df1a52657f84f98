package models

import "time"

// KeyMaterial is the durable per-user local record backing the encryption
// session: the encrypted verification blob and, when known on this device,
// the salt. An empty VerificationBlob with a non-nil Salt is the post-logout
// state: setup is still confirmed, but the blob was cleared.
type KeyMaterial struct {
	UserID           string
	VerificationBlob string
	Salt             []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
