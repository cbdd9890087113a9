package model

import "github.com/shopspring/decimal"

// Validator is one row per (agent, validator address).
type Validator struct {
	ID                  string          `json:"id"`
	Agent               string          `json:"agent"`
	Address             string          `json:"address"`
	Score               int64           `json:"score"`
	TotalRewardsEarned  decimal.Decimal `json:"total_rewards_earned"`
	ValidationCount     int64           `json:"validation_count"`
	SuccessRate         decimal.Decimal `json:"success_rate"`
	LastActiveTimestamp uint64          `json:"last_active_timestamp"`
}

// ValidatorNetwork is the cross-agent overlay per validator address.
// InfluenceScore is the validator's validation count divided by the owning
// agent's total validator count at the time of the last update.
type ValidatorNetwork struct {
	Address          string          `json:"address"`
	AgentCount       int64           `json:"agent_count"`
	TotalValidations int64           `json:"total_validations"`
	InfluenceScore   decimal.Decimal `json:"influence_score"`
}

// NetworkMetrics is the day-bucketed network-wide aggregate row.
type NetworkMetrics struct {
	Date              uint64          `json:"date"`
	NewAgents         int64           `json:"new_agents"`
	NewValidators     int64           `json:"new_validators"`
	NewServices       int64           `json:"new_services"`
	NewContributions  int64           `json:"new_contributions"`
	TotalTransactions int64           `json:"total_transactions"`
	NetworkGrowthRate decimal.Decimal `json:"network_growth_rate"`
}
