package config

import (
	"github.com/creasty/defaults"
)

const testConfig = `
MongoDB:
    ConnectionString: null
    AuthenticationMechanism: null
    SocketTimeout: 2
    Database: ipvet-test
    TLS:
        Enable: false
        VerifyCertificate: false
        CAFile: null
LogConfig:
    LogLevel: 3
    LogPath: null
    LogToFile: false
    LogToDB: false
UserConfig:
    UpdateCheckFrequency: 14
Providers:
    Enabled: ["abuseipdb", "ipqs", "internetdb", "torexit"]
    AbuseIPDBAPIKey: test-key
    IPQSAPIKey: test-key
Check:
    TimeoutSeconds: 15
    RetryAttempts: 3
    RetryBaseDelaySeconds: 1
Scoring:
    TwoListedBoost: 10
    ThreeListedBoost: 15
Batch:
    RateLimitPerSecond: 1
    DNSBLZones: ["zen.spamhaus.org", "bl.spamcop.net"]
`

//LoadTestingConfig loads the hard coded testing config
func LoadTestingConfig(mongoURI string) (*Config, error) {
	config := &Config{}

	// Initialize table config to the default values
	if err := defaults.Set(&config.T); err != nil {
		return nil, err
	}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	// Deserialize the yaml file contents into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	config.S.MongoDB.ConnectionString = mongoURI
	config.S.Version = "v0.0.0+testing"
	config.S.ExactVersion = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
