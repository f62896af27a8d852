package model

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformYouTube  Platform = "youtube"
	// TODO: Add more as needed
)

func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(s) {
	case string(PlatformFacebook):
		return PlatformFacebook, nil
	case string(PlatformYouTube):
		return PlatformYouTube, nil
	default:
		return PlatformFacebook, fmt.Errorf("unknown platform: %s", s)
	}
}
