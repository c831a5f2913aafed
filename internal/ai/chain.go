package ai

// NewChain resolves the static provider priority chain once at startup: the
// first successfully constructed provider wins and is used for every
// request. There is no per-request failover; a chosen provider's errors
// propagate to the caller. Returns nil when no provider is configured,
// which callers treat as the deterministic-fallback mode.
func NewChain(configs []ProviderConfig) Generator {
	for _, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		gen, err := NewGenerator(cfg)
		if err != nil || gen == nil {
			continue
		}
		return gen
	}
	return nil
}
