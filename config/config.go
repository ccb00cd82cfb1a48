// Package config holds the settings shared by the tools.
package config

import (
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config is read from wikikb.yaml and WIKIKB_* variables.  Tools use
// it for their flag defaults.
type Config struct {
	BatchSize int    `mapstructure:"batch_size"`
	Workers   int    `mapstructure:"workers"`
	Limit     int64  `mapstructure:"limit"`
	Patterns  string `mapstructure:"patterns"`
	Profile   string `mapstructure:"profile"`
	Redirects string `mapstructure:"redirects"`
	Output    string `mapstructure:"output"`
	Corpus    string `mapstructure:"corpus"`
	LogLevel  string `mapstructure:"log_level"`
	Metrics   string `mapstructure:"metrics"`

	CouchDB   string `mapstructure:"couchdb"`
	Couchbase string `mapstructure:"couchbase"`
	Bucket    string `mapstructure:"bucket"`
	Elastic   string `mapstructure:"elastic"`
	ESIndex   string `mapstructure:"es_index"`
	MongoDB   string `mapstructure:"mongodb"`
	MongoName string `mapstructure:"mongo_db"`
}

// Load reads wikikb.yaml from the working directory when there is
// one.  Environment variables win over the file.
func Load() (*Config, error) {
	return load(".")
}

func load(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("wikikb")
	v.SetConfigType("yaml")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetEnvPrefix("wikikb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("batch_size", 4000)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("limit", 0)
	v.SetDefault("patterns", "data/patterns_en.yaml")
	v.SetDefault("profile", "")
	v.SetDefault("redirects", "")
	v.SetDefault("output", "kb.tsv")
	v.SetDefault("corpus", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics", "")
	v.SetDefault("couchdb", "")
	v.SetDefault("couchbase", "")
	v.SetDefault("bucket", "default")
	v.SetDefault("elastic", "")
	v.SetDefault("es_index", "wikikb")
	v.SetDefault("mongodb", "")
	v.SetDefault("mongo_db", "wp")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
