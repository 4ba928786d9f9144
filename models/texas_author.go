package models

import "time"

// TexasAuthor is a directory row mirrored from the authors spreadsheet.
// SyncKey identifies the same row across syncs.
type TexasAuthor struct {
	ID           uint              `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	SyncKey      string            `json:"sync_key" gorm:"column:sync_key;type:varchar(255);not null;uniqueIndex"`
	ExternalID   *string           `json:"external_id,omitempty" gorm:"column:external_id;type:varchar(128)"`
	FirstName    string            `json:"first_name" gorm:"column:first_name;type:varchar(128)"`
	LastName     string            `json:"last_name" gorm:"column:last_name;type:varchar(128)"`
	FullName     string            `json:"full_name" gorm:"column:full_name;type:varchar(255);index"`
	Email        string            `json:"email" gorm:"column:email;type:varchar(255);index"`
	Phone        string            `json:"phone" gorm:"column:phone;type:varchar(64)"`
	City         string            `json:"city" gorm:"column:city;type:varchar(128)"`
	Website      string            `json:"website" gorm:"column:website;type:varchar(255)"`
	Genres       string            `json:"genres" gorm:"column:genres;type:varchar(255)"`
	Notes        string            `json:"notes" gorm:"column:notes;type:text"`
	Extra        map[string]string `json:"extra,omitempty" gorm:"column:extra;serializer:json;type:text"`
	LastSyncedAt time.Time         `json:"last_synced_at" gorm:"column:last_synced_at"`
	CreatedAt    time.Time         `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (TexasAuthor) TableName() string { return "texas_authors" }

// SameContent reports whether the synced fields of a and b are equal.
func (a *TexasAuthor) SameContent(b *TexasAuthor) bool {
	if a == nil || b == nil {
		return false
	}
	if strPtrValue(a.ExternalID) != strPtrValue(b.ExternalID) ||
		a.FirstName != b.FirstName ||
		a.LastName != b.LastName ||
		a.FullName != b.FullName ||
		a.Email != b.Email ||
		a.Phone != b.Phone ||
		a.City != b.City ||
		a.Website != b.Website ||
		a.Genres != b.Genres ||
		a.Notes != b.Notes {
		return false
	}
	if len(a.Extra) != len(b.Extra) {
		return false
	}
	for k, v := range a.Extra {
		if b.Extra[k] != v {
			return false
		}
	}
	return true
}

func strPtrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
