package expiration

import (
	"strings"
	"time"
)

/*
Tier is a named TTL that callers pick per content category.
The cache itself only ever sees the duration.
*/
type Tier struct {
	Name string
	TTL  time.Duration
}

var (
	// Static is for pages that change only on deploy (home, about).
	Static = Tier{Name: "static", TTL: 24 * time.Hour}

	// Service is for service and industry landing pages.
	Service = Tier{Name: "service", TTL: 12 * time.Hour}

	// Location is for city / region pages.
	Location = Tier{Name: "location", TTL: 6 * time.Hour}

	// Blog is for posts whose metadata may be edited after publishing.
	Blog = Tier{Name: "blog", TTL: 2 * time.Hour}

	// Dynamic is for listings and other content that changes during the day.
	Dynamic = Tier{Name: "dynamic", TTL: time.Hour}

	// Realtime is for content that must be close to live.
	Realtime = Tier{Name: "realtime", TTL: 5 * time.Minute}

	// NoCache disables caching: every request regenerates.
	NoCache = Tier{Name: "no_cache", TTL: 0}
)

// Tiers returns all named tiers, longest TTL first.
func Tiers() []Tier {
	return []Tier{Static, Service, Location, Blog, Dynamic, Realtime, NoCache}
}

// LookupTier finds a tier by name, ignoring case.
func LookupTier(name string) (Tier, bool) {
	for _, t := range Tiers() {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Tier{}, false
}

func (t Tier) String() string {
	return t.Name + "(" + t.TTL.String() + ")"
}
