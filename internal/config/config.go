package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EngineConfig holds configuration for the process/backfill commands.
type EngineConfig struct {
	RPCURL        string
	Input         string
	PGDSN         string
	BatchSize     int
	StateFile     string
	RecomputeFrom string
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string

	USDPairs            []string
	FeeRecipient        string
	RegistrarOut        string
	SelectorMap         map[string]string
	GraduationThreshold int64
}

// Default stable-asset addresses (USDC, USDT, DAI mainnet). Overridable
// via config so the set updates without redeploying the engine.
var defaultUSDPairs = []string{
	"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	"0xdAC17F958D2ee523a2206206994597C13D831ec7",
	"0x6B175474E89094C44Da98b954EedeAC495271d0F",
}

// Load merges config file, environment variables, and flags into EngineConfig.
func Load(cfgFile string, flags *pflag.FlagSet) (EngineConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("AGENTSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("batch-size", 500)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("registrar-out", "./data/watch_sources.jsonl")
	v.SetDefault("usd-pairs", defaultUSDPairs)
	v.SetDefault("graduation-threshold", int64(100))

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return EngineConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return EngineConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return EngineConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := EngineConfig{
		RPCURL:              v.GetString("rpc"),
		Input:               v.GetString("in"),
		PGDSN:               v.GetString("pg-dsn"),
		BatchSize:           v.GetInt("batch-size"),
		StateFile:           v.GetString("state-file"),
		RecomputeFrom:       v.GetString("recompute-from"),
		MaxRetries:          v.GetInt("max-retries"),
		RetryBackoff:        v.GetDuration("retry-backoff"),
		LogLevel:            v.GetString("log-level"),
		USDPairs:            getStringSlice(v, "usd-pairs"),
		FeeRecipient:        v.GetString("fee-recipient"),
		RegistrarOut:        v.GetString("registrar-out"),
		SelectorMap:         getStringMap(v, "selector-map"),
		GraduationThreshold: v.GetInt64("graduation-threshold"),
	}

	return cfg, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
