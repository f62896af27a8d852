package model

import (
	"github.com/autosocial/modbot/database/db"
)

// SocialAccount is a connected platform account and the token needed to act
// on its behalf. Accounts are managed by the dashboard; the pipeline only
// looks them up by (platform, platformId).
type SocialAccount struct {
	ID          string
	Platform    Platform
	PlatformID  string
	AccessToken string
	Name        string
}

func SocialAccountFromRow(row db.SocialAccount) (*SocialAccount, error) {
	platform, err := ParsePlatform(row.Platform)
	if err != nil {
		return nil, err
	}
	return &SocialAccount{
		ID:          row.ID,
		Platform:    platform,
		PlatformID:  row.PlatformID,
		AccessToken: row.AccessToken,
		Name:        row.Name,
	}, nil
}
