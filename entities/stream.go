package entities

import (
	"time"

	"github.com/google/uuid"
	"stream-sync/constant"
)

// AssetStream tracks the streaming readiness of one uploaded asset. The
// pipeline-assigned AssetId is the mutation key; ContentHash is the stable
// lookup key callers use, since playback handles only exist once transcoding
// finishes.
type AssetStream struct {
	ID             uuid.UUID             `json:"id"`
	AssetId        string                `json:"asset_id"`
	ContentHash    string                `json:"content_hash"`
	PlaybackHandle string                `json:"playback_handle"`
	Status         constant.StreamStatus `json:"status"`
	Name           string                `json:"name"`
	UploaderWallet string                `json:"uploader_wallet"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (AssetStream) TableName() string {
	return "asset_streams"
}
