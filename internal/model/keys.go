package model

import (
	"fmt"
	"time"
)

// SourceKey identifies one external job-feed provider. Values are embedded in
// listing external ids ("<source>:<nativeId>"), so they must never change for
// stored data to keep deduplicating correctly.
type SourceKey string

const (
	SourceRemotive   SourceKey = "remotive"
	SourceRemoteOK   SourceKey = "remoteok"
	SourceAdzuna     SourceKey = "adzuna"
	SourceHackerNews SourceKey = "hackernews"
	SourceReddit     SourceKey = "reddit"
)

// AllSources lists every known provider, in stable order.
func AllSources() []SourceKey {
	return []SourceKey{SourceRemotive, SourceRemoteOK, SourceAdzuna, SourceHackerNews, SourceReddit}
}

// ParseSourceKey converts a raw string to a SourceKey, returning an error for
// unknown values.
func ParseSourceKey(s string) (SourceKey, error) {
	k := SourceKey(s)
	switch k {
	case SourceRemotive, SourceRemoteOK, SourceAdzuna, SourceHackerNews, SourceReddit:
		return k, nil
	}
	return "", fmt.Errorf("unknown source key %q", s)
}

// ExternalID builds the natural key for a provider-native id.
func (k SourceKey) ExternalID(nativeID string) string {
	return string(k) + ":" + nativeID
}

// Freshness is a named maximum-age preset for aggregation.
type Freshness string

const (
	Freshness24h Freshness = "24h"
	Freshness3d  Freshness = "3d"
	Freshness7d  Freshness = "7d"
	Freshness30d Freshness = "30d"
	FreshnessAll Freshness = "all"
)

// ParseFreshness converts a raw string to a Freshness, returning an error for
// unknown values.
func ParseFreshness(s string) (Freshness, error) {
	f := Freshness(s)
	switch f {
	case Freshness24h, Freshness3d, Freshness7d, Freshness30d, FreshnessAll:
		return f, nil
	}
	return "", fmt.Errorf("unknown freshness preset %q", s)
}

// Window returns the preset's maximum age. FreshnessAll returns 0, meaning
// no age limit.
func (f Freshness) Window() time.Duration {
	switch f {
	case Freshness24h:
		return 24 * time.Hour
	case Freshness3d:
		return 3 * 24 * time.Hour
	case Freshness7d:
		return 7 * 24 * time.Hour
	case Freshness30d:
		return 30 * 24 * time.Hour
	}
	return 0
}
