package model

import "encoding/json"

// Event names accepted by the engine. The host decoder emits these in
// chain-canonical order (block number, then log index).
const (
	EventTransfer              = "transfer"
	EventSwap                  = "swap"
	EventStakeUpdated          = "stake_updated"
	EventRewardDistributed     = "reward_distributed"
	EventServiceAccepted       = "service_accepted"
	EventValidatorAdded        = "validator_added"
	EventValidatorScoreUpdated = "validator_score_updated"
	EventContributionSubmitted = "contribution_submitted"
	EventAgentCreated          = "agent_created"
	EventAgentGraduated        = "agent_graduated"
	EventLaunched              = "launched"
	EventLaunchCall            = "launch_call"
)

// EventRecord is the JSON envelope for one decoded chain event.
type EventRecord struct {
	ChainID     uint64          `json:"chain_id"`
	BlockNumber uint64          `json:"block_number"`
	BlockHash   string          `json:"block_hash"`
	TxHash      string          `json:"tx_hash"`
	LogIndex    uint64          `json:"log_index"`
	Address     string          `json:"address"`
	EventName   string          `json:"event_name"`
	Timestamp   uint64          `json:"timestamp"`
	TxFrom      string          `json:"tx_from"`
	Selector    string          `json:"selector,omitempty"`
	Decoded     json.RawMessage `json:"decoded"`
}
