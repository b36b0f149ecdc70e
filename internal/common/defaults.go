// Package common provides shared utilities and default configuration.
package common

// DefaultKVValue represents a default key/value pair that is seeded on startup.
type DefaultKVValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// GetDefaultKVValues returns the list of default KV values seeded on startup.
// Keys are only created when absent so operator-set values survive restarts;
// secrets can then be filled through the KV store without touching the config
// file.
func GetDefaultKVValues() []DefaultKVValue {
	return []DefaultKVValue{
		{
			Key:         "market_api_key",
			Value:       "",
			Description: "Market data provider API token (EODHD)",
		},
		{
			Key:         "gemini_api_key",
			Value:       "",
			Description: "Google Gemini API key for narrative generation",
		},
		{
			Key:         "anthropic_api_key",
			Value:       "",
			Description: "Anthropic Claude API key for narrative generation",
		},
	}
}
