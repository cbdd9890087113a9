package model

import "github.com/shopspring/decimal"

// Agent is the single running row per agent identifier. Created once on
// agent creation; every subsequent handler mutates a subset of fields.
type Agent struct {
	ID        string  `json:"id"`
	VirtualID uint64  `json:"virtual_id"`
	Founder   string  `json:"founder"`
	DAO       string  `json:"dao"`
	Token     string  `json:"token"`
	TBA       string  `json:"tba"`
	CoreTypes []uint8 `json:"core_types"`
	CreatedAt uint64  `json:"created_at"`

	MaturityScore       int64  `json:"maturity_score"`
	GraduatedToUniswap  bool   `json:"graduated_to_uniswap"`
	GraduationTimestamp uint64 `json:"graduation_timestamp,omitempty"`

	TotalStaked               decimal.Decimal `json:"total_staked"`
	UniqueStakers             int64           `json:"unique_stakers"`
	StakingRewardsDistributed decimal.Decimal `json:"staking_rewards_distributed"`
	AverageStakeDuration      uint64          `json:"average_stake_duration"`
	MinStakeAmount            decimal.Decimal `json:"min_stake_amount"`
	MaxStakeAmount            decimal.Decimal `json:"max_stake_amount"`
	StakeGrowthRate           decimal.Decimal `json:"stake_growth_rate"`
	TimeWeightedStake         decimal.Decimal `json:"time_weighted_stake"`

	StakingAPY   decimal.Decimal `json:"staking_apy"`
	HourlyYield  decimal.Decimal `json:"hourly_yield"`
	DailyYield   decimal.Decimal `json:"daily_yield"`
	WeeklyYield  decimal.Decimal `json:"weekly_yield"`
	MonthlyYield decimal.Decimal `json:"monthly_yield"`

	ServicesArray        []string        `json:"services_array"`
	ServiceSuccessCount  int64           `json:"service_success_count"`
	ServiceFailureCount  int64           `json:"service_failure_count"`
	ServiceSuccessRate   decimal.Decimal `json:"service_success_rate"`
	TotalServiceImpact   decimal.Decimal `json:"total_service_impact"`
	AverageServiceImpact decimal.Decimal `json:"average_service_impact"`
	LastServiceTimestamp uint64          `json:"last_service_timestamp"`

	ContributionCount          int64           `json:"contribution_count"`
	ContributionAcceptanceRate decimal.Decimal `json:"contribution_acceptance_rate"`

	ValidatorCount       int64           `json:"validator_count"`
	ActiveValidatorCount int64           `json:"active_validator_count"`
	ValidatorSuccessRate decimal.Decimal `json:"validator_success_rate"`

	GraduationProgress    decimal.Decimal `json:"graduation_progress"`
	GraduationPredictedAt uint64          `json:"graduation_predicted_at,omitempty"`
	GraduationConfidence  decimal.Decimal `json:"graduation_confidence"`

	StakingGrowthRate   decimal.Decimal `json:"staking_growth_rate"`
	ValidatorGrowthRate decimal.Decimal `json:"validator_growth_rate"`
	ServiceGrowthRate   decimal.Decimal `json:"service_growth_rate"`

	MarketHealthScore         decimal.Decimal `json:"market_health_score"`
	NetworkGrowthContribution decimal.Decimal `json:"network_growth_contribution"`
	MarketStability           decimal.Decimal `json:"market_stability"`
	AverageTradeImpact        decimal.Decimal `json:"average_trade_impact"`

	PerformanceRank int64  `json:"performance_rank"`
	LastRankUpdate  uint64 `json:"last_rank_update"`
}

// AgentTokenIndex maps a token address back to its agent so trade
// handlers can reach the owning agent's market fields.
type AgentTokenIndex struct {
	Token   string `json:"token"`
	AgentID string `json:"agent_id"`
}

// AgentDayData holds daily-delta metrics per (agent, day bucket).
type AgentDayData struct {
	Agent string `json:"agent"`
	Date  uint64 `json:"date"`

	DailyStakeAmount   decimal.Decimal `json:"daily_stake_amount"`
	DailyUnstakeAmount decimal.Decimal `json:"daily_unstake_amount"`
	NetStakingChange   decimal.Decimal `json:"net_staking_change"`
	UniqueDailyStakers int64           `json:"unique_daily_stakers"`
	AverageStakeSize   decimal.Decimal `json:"average_stake_size"`

	NewContributions int64           `json:"new_contributions"`
	AcceptedServices int64           `json:"accepted_services"`
	DailyImpactScore decimal.Decimal `json:"daily_impact_score"`

	DailyRewardsGenerated decimal.Decimal `json:"daily_rewards_generated"`
	StakersRewards        decimal.Decimal `json:"stakers_rewards"`
	ValidatorsRewards     decimal.Decimal `json:"validators_rewards"`
	ContributorsRewards   decimal.Decimal `json:"contributors_rewards"`
	ProtocolRewards       decimal.Decimal `json:"protocol_rewards"`
	RewardPerStake        decimal.Decimal `json:"reward_per_stake"`

	ActiveValidators        int64           `json:"active_validators"`
	AverageValidatorScore   decimal.Decimal `json:"average_validator_score"`
	ValidationsPerValidator decimal.Decimal `json:"validations_per_validator"`

	MaturityScoreChange int64           `json:"maturity_score_change"`
	ServiceSuccessCount int64           `json:"service_success_count"`
	ServiceFailureCount int64           `json:"service_failure_count"`
	DailySuccessRate    decimal.Decimal `json:"daily_success_rate"`
	PerformanceScore    decimal.Decimal `json:"performance_score"`

	StakeSizeDistribution      []decimal.Decimal `json:"stake_size_distribution"`
	ImpactScoreDistribution    []decimal.Decimal `json:"impact_score_distribution"`
	ValidatorScoreDistribution []decimal.Decimal `json:"validator_score_distribution"`
}

// Service is an append-only record of accepted agent work product.
type Service struct {
	ID            string          `json:"id"`
	Agent         string          `json:"agent"`
	Contribution  string          `json:"contribution"`
	MaturityScore int64           `json:"maturity_score"`
	Impact        decimal.Decimal `json:"impact"`
	CoreType      uint8           `json:"core_type"`
	Timestamp     uint64          `json:"timestamp"`
	Token         string          `json:"token"`

	RewardsGenerated decimal.Decimal `json:"rewards_generated"`
	PriceImpact      decimal.Decimal `json:"price_impact"`
	RewardEfficiency decimal.Decimal `json:"reward_efficiency"`
	LiquidityEffect  decimal.Decimal `json:"liquidity_effect"`
}

// Contribution is an append-only work-product submission, optionally
// parented to another contribution (tree, not cyclic) and linked to a
// Service once accepted.
type Contribution struct {
	ID                 string `json:"id"`
	Agent              string `json:"agent"`
	Contributor        string `json:"contributor"`
	CoreType           uint8  `json:"core_type"`
	Timestamp          uint64 `json:"timestamp"`
	Accepted           bool   `json:"accepted"`
	ParentContribution string `json:"parent_contribution,omitempty"`
	Service            string `json:"service,omitempty"`
}

// MaturityScoreSnapshot is an immutable record of a maturity score change.
type MaturityScoreSnapshot struct {
	Agent       string          `json:"agent"`
	Timestamp   uint64          `json:"timestamp"`
	Score       int64           `json:"score"`
	BlockNumber uint64          `json:"block_number"`
	GrowthRate  decimal.Decimal `json:"growth_rate"`
}

// MarketHealthSnapshot freezes the composite market-health score and its
// weighted inputs at the moment of a service acceptance.
type MarketHealthSnapshot struct {
	Agent                  string          `json:"agent"`
	Timestamp              uint64          `json:"timestamp"`
	Score                  decimal.Decimal `json:"score"`
	PriceStability         decimal.Decimal `json:"price_stability"`
	LiquidityDepth         decimal.Decimal `json:"liquidity_depth"`
	ValidatorParticipation decimal.Decimal `json:"validator_participation"`
	StakingEfficiency      decimal.Decimal `json:"staking_efficiency"`
	ServiceSuccess         decimal.Decimal `json:"service_success"`
}

// GraduationPrediction is the latest-wins prediction row per agent.
type GraduationPrediction struct {
	Agent        string          `json:"agent"`
	Timestamp    uint64          `json:"timestamp"`
	Progress     decimal.Decimal `json:"progress"`
	ProgressRate decimal.Decimal `json:"progress_rate"`
	PredictedAt  uint64          `json:"predicted_at"`
	Confidence   decimal.Decimal `json:"confidence"`
}

// GraduationMarketImpact compares token economics around the graduation
// moment. Pre fields freeze at graduation; Post fields fill on the first
// trade afterwards.
type GraduationMarketImpact struct {
	Agent               string          `json:"agent"`
	Token               string          `json:"token"`
	GraduationTimestamp uint64          `json:"graduation_timestamp"`
	PreVWAP             decimal.Decimal `json:"pre_vwap"`
	PreVolume           decimal.Decimal `json:"pre_volume"`
	PreTxCount          int64           `json:"pre_tx_count"`
	PostVWAP            decimal.Decimal `json:"post_vwap"`
	PostVolume          decimal.Decimal `json:"post_volume"`
	PostTxCount         int64           `json:"post_tx_count"`
	PostRecorded        bool            `json:"post_recorded"`
}
