// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/arules/dataset"
	"github.com/gorse-io/arules/mining"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for mining and recommendation.
type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Mining    MiningConfig    `mapstructure:"mining"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// DatasetConfig describes the purchase log.
type DatasetConfig struct {
	Path           string `mapstructure:"path"`
	Separator      string `mapstructure:"separator" validate:"len=1"`
	CustomerColumn string `mapstructure:"customer_column" validate:"required"`
	DateColumn     string `mapstructure:"date_column" validate:"required"`
	ItemColumn     string `mapstructure:"item_column" validate:"required"`
	SkipEmpty      bool   `mapstructure:"skip_empty"`
}

func (c *DatasetConfig) CSVOptions() dataset.CSVOptions {
	return dataset.CSVOptions{
		Separator:      []rune(c.Separator)[0],
		CustomerColumn: c.CustomerColumn,
		DateColumn:     c.DateColumn,
		ItemColumn:     c.ItemColumn,
	}
}

// MiningConfig holds frequent itemset and rule parameters.
type MiningConfig struct {
	MinSupport    float64 `mapstructure:"min_support" validate:"gt=0,lte=1"`
	MinThreshold  float64 `mapstructure:"min_threshold" validate:"gte=0"`
	Metric        string  `mapstructure:"metric" validate:"oneof=support confidence lift leverage conviction"`
	MaxLength     int     `mapstructure:"max_length" validate:"gte=0"`
	MaxCandidates int     `mapstructure:"max_candidates" validate:"gte=0"`
	NumJobs       int     `mapstructure:"num_jobs" validate:"gte=1"`
}

func (c *MiningConfig) MinerOptions() []mining.MinerOption {
	return []mining.MinerOption{
		mining.WithMaxLength(c.MaxLength),
		mining.WithMaxCandidates(c.MaxCandidates),
		mining.WithJobs(c.NumJobs),
	}
}

// RecommendConfig holds lookup defaults.
type RecommendConfig struct {
	Metric      string        `mapstructure:"metric" validate:"oneof=support confidence lift leverage conviction"`
	TopN        int           `mapstructure:"top_n" validate:"gt=0"`
	Consequents string        `mapstructure:"consequents" validate:"oneof=first all"`
	Distinct    bool          `mapstructure:"distinct"`
	CacheSize   int           `mapstructure:"cache_size" validate:"gte=0"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Separator:      ",",
			CustomerColumn: "Member_number",
			DateColumn:     "Date",
			ItemColumn:     "itemDescription",
		},
		Mining: MiningConfig{
			MinSupport:    0.0045,
			MinThreshold:  0.001,
			Metric:        string(mining.MetricConviction),
			MaxCandidates: 1000000,
			NumJobs:       runtime.NumCPU(),
		},
		Recommend: RecommendConfig{
			Metric:      string(mining.MetricConfidence),
			TopN:        5,
			Consequents: "first",
			CacheSize:   1024,
			CacheTTL:    10 * time.Minute,
		},
	}
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [dataset]
	v.SetDefault("dataset.path", defaultConfig.Dataset.Path)
	v.SetDefault("dataset.separator", defaultConfig.Dataset.Separator)
	v.SetDefault("dataset.customer_column", defaultConfig.Dataset.CustomerColumn)
	v.SetDefault("dataset.date_column", defaultConfig.Dataset.DateColumn)
	v.SetDefault("dataset.item_column", defaultConfig.Dataset.ItemColumn)
	v.SetDefault("dataset.skip_empty", defaultConfig.Dataset.SkipEmpty)
	// [mining]
	v.SetDefault("mining.min_support", defaultConfig.Mining.MinSupport)
	v.SetDefault("mining.min_threshold", defaultConfig.Mining.MinThreshold)
	v.SetDefault("mining.metric", defaultConfig.Mining.Metric)
	v.SetDefault("mining.max_length", defaultConfig.Mining.MaxLength)
	v.SetDefault("mining.max_candidates", defaultConfig.Mining.MaxCandidates)
	v.SetDefault("mining.num_jobs", defaultConfig.Mining.NumJobs)
	// [recommend]
	v.SetDefault("recommend.metric", defaultConfig.Recommend.Metric)
	v.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
	v.SetDefault("recommend.consequents", defaultConfig.Recommend.Consequents)
	v.SetDefault("recommend.distinct", defaultConfig.Recommend.Distinct)
	v.SetDefault("recommend.cache_size", defaultConfig.Recommend.CacheSize)
	v.SetDefault("recommend.cache_ttl", defaultConfig.Recommend.CacheTTL)
}

type configBinding struct {
	key string
	env string
}

// LoadConfig loads configuration from a toml, yaml or json file. Files with other
// extensions are read as toml. Environment variables override the file and an empty
// path loads defaults only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)

	bindings := []configBinding{
		{"dataset.path", "ARULES_DATASET_PATH"},
		{"mining.min_support", "ARULES_MIN_SUPPORT"},
		{"mining.min_threshold", "ARULES_MIN_THRESHOLD"},
		{"mining.metric", "ARULES_RULE_METRIC"},
		{"mining.num_jobs", "ARULES_NUM_JOBS"},
		{"recommend.metric", "ARULES_RECOMMEND_METRIC"},
		{"recommend.top_n", "ARULES_TOP_N"},
	}
	for _, binding := range bindings {
		if err := v.BindEnv(binding.key, binding.env); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		switch strings.TrimPrefix(filepath.Ext(path), ".") {
		case "json", "toml", "yaml", "yml":
		default:
			// templates and extensionless files
			v.SetConfigType("toml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
