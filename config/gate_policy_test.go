package config

import "testing"

func TestGatePolicyNormalize(t *testing.T) {
	cfg := GateConfig{
		RatePerSecond: -1,
		Burst:         -3,
		Disallow:      []string{"Paywall.com", "https://www.Paywall.com", "bad.com"},
		PerDomain: map[string]DomainLimit{
			" https://News.example.com ": {RatePerSecond: 2, Burst: 4},
			"":                           {RatePerSecond: 1, Burst: 1},
		},
	}

	norm := cfg.Normalize()
	if norm.RatePerSecond != 0 {
		t.Fatalf("expected rate to clamp to 0, got %.2f", norm.RatePerSecond)
	}
	if norm.Burst != 0 {
		t.Fatalf("expected burst to clamp to 0, got %d", norm.Burst)
	}
	if len(norm.Disallow) != 2 || norm.Disallow[0] != "bad.com" || norm.Disallow[1] != "paywall.com" {
		t.Fatalf("unexpected disallow list: %#v", norm.Disallow)
	}
	if len(norm.PerDomain) != 1 {
		t.Fatalf("expected 1 per-domain entry, got %d", len(norm.PerDomain))
	}
	if limit := norm.PerDomain["news.example.com"]; limit.RatePerSecond != 2 || limit.Burst != 4 {
		t.Fatalf("unexpected limit for news.example.com: %#v", limit)
	}
}

func TestGatePolicyValidate(t *testing.T) {
	valid := GateConfig{
		Disallow:  []string{"blocked.com"},
		PerDomain: map[string]DomainLimit{"example.com": {RatePerSecond: 1, Burst: 1}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	conflict := GateConfig{
		Disallow:  []string{"example.com"},
		PerDomain: map[string]DomainLimit{"example.com": {RatePerSecond: 1, Burst: 1}},
	}
	if err := conflict.Validate(); err == nil {
		t.Fatalf("expected conflict validation error")
	}
}
