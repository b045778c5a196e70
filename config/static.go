package config

import (
	"path/filepath"
	"reflect"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		MongoDB      MongoDBStaticCfg   `yaml:"MongoDB"`
		Log          LogStaticCfg       `yaml:"LogConfig"`
		UserConfig   UserCfgStaticCfg   `yaml:"UserConfig"`
		Providers    ProvidersStaticCfg `yaml:"Providers"`
		Check        CheckStaticCfg     `yaml:"Check"`
		Scoring      ScoringStaticCfg   `yaml:"Scoring"`
		Batch        BatchStaticCfg     `yaml:"Batch"`
		Version      string
		ExactVersion string
	}

	//MongoDBStaticCfg contains the means for connecting to MongoDB
	MongoDBStaticCfg struct {
		ConnectionString string        `yaml:"ConnectionString" default:"mongodb://localhost:27017"`
		AuthMechanism    string        `yaml:"AuthenticationMechanism"`
		SocketTimeout    time.Duration `yaml:"SocketTimeout" default:"2"`
		Database         string        `yaml:"Database" default:"ipvet"`
		TLS              TLSStaticCfg  `yaml:"TLS"`
	}

	//TLSStaticCfg contains the means for connecting to MongoDB over TLS
	TLSStaticCfg struct {
		Enabled           bool   `yaml:"Enable"`
		VerifyCertificate bool   `yaml:"VerifyCertificate"`
		CAFile            string `yaml:"CAFile"`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel  int    `yaml:"LogLevel" default:"2"`
		LogPath   string `yaml:"LogPath" default:"/var/lib/ipvet/logs"`
		LogToFile bool   `yaml:"LogToFile"`
		LogToDB   bool   `yaml:"LogToDB"`
	}

	//UserCfgStaticCfg contains user preferences
	UserCfgStaticCfg struct {
		UpdateCheckFrequency int `yaml:"UpdateCheckFrequency" default:"14"`
	}

	//ProvidersStaticCfg selects the reputation sources to query and holds
	//their credentials. API key fields support ${ENV_VAR} expansion.
	ProvidersStaticCfg struct {
		Enabled      []string `yaml:"Enabled" default:"[\"abuseipdb\", \"ipqs\", \"internetdb\", \"torexit\"]"`
		AbuseIPDBKey string   `yaml:"AbuseIPDBAPIKey" default:"${ABUSEIPDB_API_KEY}"`
		IPQSKey      string   `yaml:"IPQSAPIKey" default:"${IPQS_API_KEY}"`
	}

	//CheckStaticCfg bounds individual provider queries
	CheckStaticCfg struct {
		TimeoutSeconds     int `yaml:"TimeoutSeconds" default:"15"`
		RetryAttempts      int `yaml:"RetryAttempts" default:"3"`
		RetryBaseDelaySecs int `yaml:"RetryBaseDelaySeconds" default:"1"`
	}

	//ScoringStaticCfg tunes the corroboration boost applied when multiple
	//independent providers list the same IP
	ScoringStaticCfg struct {
		TwoListedBoost   int `yaml:"TwoListedBoost" default:"10"`
		ThreeListedBoost int `yaml:"ThreeListedBoost" default:"15"`
	}

	//BatchStaticCfg is used to control batch processing
	BatchStaticCfg struct {
		RateLimitPerSecond float64  `yaml:"RateLimitPerSecond" default:"1"`
		DNSBLZones         []string `yaml:"DNSBLZones" default:"[\"zen.spamhaus.org\", \"bl.spamcop.net\", \"b.barracudacentral.org\", \"dnsbl.sorbs.net\"]"`
	}
)

//parseStaticConfig loads the yaml from cfgFile into the provided config struct.
//It also expands environment variables and cleans file paths.
func parseStaticConfig(cfgFile []byte, config *StaticCfg) error {
	err := yaml.Unmarshal(cfgFile, config)
	if err != nil {
		return err
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	// set the socket time out in hours
	config.MongoDB.SocketTimeout *= time.Hour

	// clean all filepaths
	config.Log.LogPath = filepath.Clean(config.Log.LogPath)
	if config.MongoDB.TLS.CAFile != "" {
		config.MongoDB.TLS.CAFile = filepath.Clean(config.MongoDB.TLS.CAFile)
	}

	// grab the version constants set by the build process
	config.Version = Version
	config.ExactVersion = ExactVersion

	return nil
}
