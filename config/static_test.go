package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const staticConfigParserTestConfig = `
MongoDB:
    ConnectionString: mongodb://localhost:27017
    AuthenticationMechanism: null
    SocketTimeout: 2
    Database: ipvet
    TLS:
        Enable: false
        VerifyCertificate: false
        CAFile: aaaaa
LogConfig:
    LogLevel: 2
    LogPath: /var/lib/ipvet/logs
    LogToFile: true
    LogToDB: true
UserConfig:
    UpdateCheckFrequency: 14
Providers:
    Enabled: [abuseipdb, torexit]
    AbuseIPDBAPIKey: testkey1
    IPQSAPIKey: testkey2
Check:
    TimeoutSeconds: 15
    RetryAttempts: 3
    RetryBaseDelaySeconds: 1
Scoring:
    TwoListedBoost: 10
    ThreeListedBoost: 15
Batch:
    RateLimitPerSecond: 0.5
    DNSBLZones: ["zen.spamhaus.org", "bl.spamcop.net"]
`

var testConfigFullExp = StaticCfg{
	MongoDB: MongoDBStaticCfg{
		ConnectionString: "mongodb://localhost:27017",
		AuthMechanism:    "",
		SocketTimeout:    2 * time.Hour,
		Database:         "ipvet",
		TLS: TLSStaticCfg{
			Enabled:           false,
			VerifyCertificate: false,
			CAFile:            "aaaaa",
		},
	},
	Log: LogStaticCfg{
		LogLevel:  2,
		LogPath:   "/var/lib/ipvet/logs",
		LogToFile: true,
		LogToDB:   true,
	},
	UserConfig: UserCfgStaticCfg{
		UpdateCheckFrequency: 14,
	},
	Providers: ProvidersStaticCfg{
		Enabled:      []string{"abuseipdb", "torexit"},
		AbuseIPDBKey: "testkey1",
		IPQSKey:      "testkey2",
	},
	Check: CheckStaticCfg{
		TimeoutSeconds:     15,
		RetryAttempts:      3,
		RetryBaseDelaySecs: 1,
	},
	Scoring: ScoringStaticCfg{
		TwoListedBoost:   10,
		ThreeListedBoost: 15,
	},
	Batch: BatchStaticCfg{
		RateLimitPerSecond: 0.5,
		DNSBLZones:         []string{"zen.spamhaus.org", "bl.spamcop.net"},
	},
}

// TestParseStaticConfig ensures that a yaml config
// string is correctly converted into a StaticCfg struct.
func TestParseStaticConfig(t *testing.T) {
	config := &StaticCfg{}
	err := parseStaticConfig([]byte(staticConfigParserTestConfig), config)

	// We are not testing the version setting ensure they are equal
	testConfigFullExp.Version = config.Version
	testConfigFullExp.ExactVersion = config.ExactVersion

	assert.Nil(t, err)
	assert.Equal(t, *config, testConfigFullExp)
}

// TestFilePathCleaning ensures that paths specified
// in a config file are cleaned up correctly.
func TestFilePathCleaning(t *testing.T) {
	testConfig := `
LogConfig:
    LogPath: /var/lib/ipvet/incorrect/./../logs/
`
	testConfigExp := StaticCfg{
		Log: LogStaticCfg{
			LogPath: "/var/lib/ipvet/logs",
		},
	}
	config := &StaticCfg{}
	err := parseStaticConfig([]byte(testConfig), config)

	// We are not testing the version setting ensure they are equal
	testConfigExp.Version = config.Version
	testConfigExp.ExactVersion = config.ExactVersion

	assert.Nil(t, err)
	assert.Equal(t, *config, testConfigExp)
}

// TestEnvironmentExpansion ensures ${VAR} references in credential
// fields are replaced with the environment's values.
func TestEnvironmentExpansion(t *testing.T) {
	t.Setenv("IPVET_TEST_KEY", "expanded-key")

	testConfig := `
Providers:
    AbuseIPDBAPIKey: ${IPVET_TEST_KEY}
`
	config := &StaticCfg{}
	err := parseStaticConfig([]byte(testConfig), config)

	assert.Nil(t, err)
	assert.Equal(t, "expanded-key", config.Providers.AbuseIPDBKey)
}
