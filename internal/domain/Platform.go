package domain

import (
	"fmt"
	"strings"
)

type Platform string

const (
	PlatformMeta   Platform = "META"
	PlatformGoogle Platform = "GOOGLE"
	PlatformTikTok Platform = "TIKTOK"
	PlatformNaver  Platform = "NAVER"
)

var Platforms = []Platform{PlatformMeta, PlatformGoogle, PlatformTikTok, PlatformNaver}

// ParsePlatform aceita o nome em qualquer caixa ("meta", "Meta", "META")
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}

	return "", &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", s)}
}

func (p Platform) String() string {
	return string(p)
}

// Lower é usado em chaves de cache e nomes de config
func (p Platform) Lower() string {
	return strings.ToLower(string(p))
}
