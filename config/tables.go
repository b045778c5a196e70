package config

type (
	//TableCfg is the container for other table config sections
	TableCfg struct {
		Log       LogTableCfg
		Cache     CacheTableCfg
		RateLimit RateLimitTableCfg
	}

	//LogTableCfg contains the configuration for logging
	LogTableCfg struct {
		LogTable string `default:"logs"`
	}

	//CacheTableCfg contains the names of the cache collections
	CacheTableCfg struct {
		CacheTable     string `default:"cache"`
		PruneMetaTable string `default:"cache_meta"`
	}

	//RateLimitTableCfg contains the name of the rate limit state collection
	RateLimitTableCfg struct {
		RateLimitTable string `default:"rate_limits"`
	}
)
