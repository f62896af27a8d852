package db

type SocialAccount struct {
	ID          string `db:"id"`
	Platform    string `db:"platform"`
	PlatformID  string `db:"platform_id"`
	AccessToken string `db:"access_token"`
	Name        string `db:"name"`
}
