package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Normalize cleans domain entries, removes duplicates and clamps limiter
// values.
func (c GateConfig) Normalize() GateConfig {
	norm := c
	norm.Disallow = sanitizeDomainList(norm.Disallow)
	if norm.RatePerSecond < 0 {
		norm.RatePerSecond = 0
	}
	if norm.Burst < 0 {
		norm.Burst = 0
	}
	if norm.PerDomain == nil {
		norm.PerDomain = map[string]DomainLimit{}
	} else {
		normalized := make(map[string]DomainLimit, len(norm.PerDomain))
		for host, limit := range norm.PerDomain {
			key := normalizeHost(host)
			if key == "" {
				continue
			}
			if limit.RatePerSecond < 0 {
				limit.RatePerSecond = 0
			}
			if limit.Burst < 0 {
				limit.Burst = 0
			}
			normalized[key] = limit
		}
		norm.PerDomain = normalized
	}
	return norm
}

// Validate ensures the gate configuration is internally consistent.
func (c GateConfig) Validate() error {
	norm := c.Normalize()
	if norm.MaxWait < 0 {
		return fmt.Errorf("gate max_wait cannot be negative")
	}
	if norm.RobotsTTL < 0 {
		return fmt.Errorf("gate robots_ttl cannot be negative")
	}
	disallow := make(map[string]struct{}, len(norm.Disallow))
	for _, host := range norm.Disallow {
		if host == "" {
			return fmt.Errorf("gate disallow entry must not be empty")
		}
		disallow[host] = struct{}{}
	}
	for host := range norm.PerDomain {
		if _, blocked := disallow[host]; blocked {
			return fmt.Errorf("gate conflict: host %q has a rate limit but is disallowed", host)
		}
	}
	return nil
}

func sanitizeDomainList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		host := normalizeHost(raw)
		if host == "" {
			continue
		}
		seen[host] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for host := range seen {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func normalizeHost(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if u, err := url.Parse(value); err == nil && u.Host != "" {
			return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		}
	}
	value = strings.TrimPrefix(value, "www.")
	return value
}
