// Package router picks the upstream proxy for a connection from its
// destination hostname.
//
// A Router is built once from a Config and is read-only afterwards, so a
// single instance can be shared by every connection handler.
package router

type Router struct {
	rules    []Rule
	torProxy string
	vpnProxy string
}

// New compiles conf into an ordered rule table: every Tor rule is evaluated
// before any VPN rule. conf is copied; changing it later has no effect.
func New(conf Config) *Router {
	r := &Router{
		torProxy: conf.TorProxy,
		vpnProxy: conf.VPNProxy,
	}
	r.rules = appendRules(r.rules, conf.MatchMode, conf.TorSuffixes, UpstreamTor)
	r.rules = appendRules(r.rules, conf.MatchMode, conf.VPNSuffixes, UpstreamVPN)
	return r
}

func appendRules(rules []Rule, kind MatchKind, patterns []string, target Upstream) []Rule {
	for _, p := range patterns {
		p = NormalizeHost(p)
		if p == "" {
			continue
		}
		rules = append(rules, Rule{Kind: kind, Pattern: p, Target: target})
	}
	return rules
}

// Rules returns a copy of the compiled rule table in evaluation order.
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Match returns the target of the first rule matching host, or
// UpstreamDirect when none does.
func (r *Router) Match(host string) Upstream {
	host = NormalizeHost(host)
	for _, rule := range r.rules {
		if rule.Matches(host) {
			return rule.Target
		}
	}
	return UpstreamDirect
}

func (r *Router) MatchFunc() MatchFunc {
	return r.Match
}

func (r *Router) IsTorHost(host string) bool {
	return r.matchesTarget(host, UpstreamTor)
}

func (r *Router) IsVPNHost(host string) bool {
	return r.matchesTarget(host, UpstreamVPN)
}

func (r *Router) matchesTarget(host string, target Upstream) bool {
	host = NormalizeHost(host)
	for _, rule := range r.rules {
		if rule.Target == target && rule.Matches(host) {
			return true
		}
	}
	return false
}

// SelectUpstream routes on destinationHost, or on fallbackHost when the
// destination is empty. username is accepted for the proxy hook signature
// and ignored.
func (r *Router) SelectUpstream(destinationHost, fallbackHost, username string) Upstream {
	host := destinationHost
	if host == "" {
		host = fallbackHost
	}
	return r.Match(host)
}

// URI returns the proxy URI for u. Direct, and any upstream configured
// with an empty URI, map to "".
func (r *Router) URI(u Upstream) string {
	switch u {
	case UpstreamTor:
		return r.torProxy
	case UpstreamVPN:
		return r.vpnProxy
	}
	return ""
}

// ProxyURI is SelectUpstream followed by URI.
func (r *Router) ProxyURI(destinationHost, fallbackHost, username string) string {
	return r.URI(r.SelectUpstream(destinationHost, fallbackHost, username))
}
