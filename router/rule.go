package router

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

type Upstream int

type MatchFunc func(host string) Upstream

const (
	UpstreamDirect Upstream = iota
	UpstreamTor
	UpstreamVPN
)

var upstreamNames = []string{"direct", "tor", "vpn"}

func (u Upstream) String() string {
	if u < 0 || int(u) >= len(upstreamNames) {
		return fmt.Sprintf("upstream(%d)", int(u))
	}
	return upstreamNames[u]
}

func (u Upstream) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *Upstream) UnmarshalText(text []byte) error {
	for i, name := range upstreamNames {
		if strings.EqualFold(string(text), name) {
			*u = Upstream(i)
			return nil
		}
	}
	return oops.In("router").With("upstream", string(text)).Errorf("unknown upstream %q", text)
}

// MatchKind selects how a rule pattern is tested against a host.
//
// MatchSuffix is a plain string suffix test, so "evildomain.com" matches
// "domain.com". MatchLabel only fires on a label boundary: the host equals
// the pattern or the byte before the pattern is a dot. Hosts are plain
// strings here, so a backslash before that dot is not a DNS escape.
type MatchKind int

const (
	MatchSuffix MatchKind = iota
	MatchLabel
)

func (k MatchKind) String() string {
	switch k {
	case MatchSuffix:
		return "suffix"
	case MatchLabel:
		return "label"
	}
	return fmt.Sprintf("match(%d)", int(k))
}

func (k MatchKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MatchKind) UnmarshalText(text []byte) error {
	kind, err := ParseMatchKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func ParseMatchKind(s string) (MatchKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "suffix":
		return MatchSuffix, nil
	case "label":
		return MatchLabel, nil
	}
	return MatchSuffix, oops.In("router").With("match_mode", s).Errorf("unknown match mode %q", s)
}

// Rule maps hosts matching Pattern to Target. Pattern is stored normalized.
type Rule struct {
	Kind    MatchKind `yaml:"match"`
	Pattern string    `yaml:"pattern"`
	Target  Upstream  `yaml:"upstream"`
}

// Matches reports whether the normalized host satisfies the rule.
func (r Rule) Matches(host string) bool {
	if host == "" || r.Pattern == "" {
		return false
	}
	switch r.Kind {
	case MatchLabel:
		if !strings.HasSuffix(host, r.Pattern) {
			return false
		}
		if strings.HasPrefix(r.Pattern, ".") {
			// ".onion" already carries its own boundary
			return len(host) > len(r.Pattern)
		}
		return len(host) == len(r.Pattern) || host[len(host)-len(r.Pattern)-1] == '.'
	default:
		return strings.HasSuffix(host, r.Pattern)
	}
}
