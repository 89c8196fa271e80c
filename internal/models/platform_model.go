package models

const (
	PlatformBluesky  = "bluesky"
	PlatformX        = "x"
	PlatformThreads  = "threads"
	PlatformMisskey  = "misskey"
	PlatformMastodon = "mastodon"
)

// SupportedPlatforms lists every platform in display order.
var SupportedPlatforms = []string{
	PlatformBluesky,
	PlatformX,
	PlatformThreads,
	PlatformMisskey,
	PlatformMastodon,
}

// CharacterLimits is the maximum post length per platform.
var CharacterLimits = map[string]int{
	PlatformBluesky:  300,
	PlatformX:        280,
	PlatformThreads:  500,
	PlatformMisskey:  3000,
	PlatformMastodon: 500,
}

func IsSupportedPlatform(name string) bool {
	_, ok := CharacterLimits[name]
	return ok
}

type PlatformInfo struct {
	Enabled bool `json:"enabled"`
	Limit   int  `json:"limit"`
}

// MediaFile describes a staged upload.
type MediaFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
