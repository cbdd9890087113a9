package model

// Decoded event payloads. Raw token amounts stay string-encoded decimal
// integers so arbitrarily large values survive JSON round-trips.

// TransferEventData is the decoded ERC20 Transfer payload.
type TransferEventData struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// SwapEventData is the decoded pair Swap payload.
type SwapEventData struct {
	Amount0In  string `json:"amount0_in"`
	Amount1In  string `json:"amount1_in"`
	Amount0Out string `json:"amount0_out"`
	Amount1Out string `json:"amount1_out"`
}

// StakeUpdatedEventData is the decoded StakeUpdated payload.
type StakeUpdatedEventData struct {
	VirtualID     uint64 `json:"virtual_id"`
	OldStake      string `json:"old_stake"`
	NewStake      string `json:"new_stake"`
	UniqueStakers int64  `json:"unique_stakers"`
}

// RewardDistributedEventData is the decoded RewardDistributed payload.
// RecipientType: 0 stakers, 1 validators, 2 contributors, 3 protocol.
type RewardDistributedEventData struct {
	VirtualID     uint64 `json:"virtual_id"`
	Amount        string `json:"amount"`
	RecipientType int32  `json:"recipient_type"`
}

// ServiceAcceptedEventData is the decoded ServiceAccepted payload.
type ServiceAcceptedEventData struct {
	VirtualID      uint64 `json:"virtual_id"`
	ServiceID      uint64 `json:"service_id"`
	ContributionID uint64 `json:"contribution_id"`
	MaturityScore  int64  `json:"maturity_score"`
	Impact         string `json:"impact"`
	CoreType       uint8  `json:"core_type"`
}

// ValidatorAddedEventData is the decoded ValidatorAdded payload.
type ValidatorAddedEventData struct {
	VirtualID uint64 `json:"virtual_id"`
	Validator string `json:"validator"`
}

// ValidatorScoreUpdatedEventData is the decoded ValidatorScoreUpdated payload.
type ValidatorScoreUpdatedEventData struct {
	VirtualID uint64 `json:"virtual_id"`
	Validator string `json:"validator"`
	NewScore  int64  `json:"new_score"`
}

// ContributionSubmittedEventData is the decoded ContributionSubmitted payload.
type ContributionSubmittedEventData struct {
	VirtualID            uint64 `json:"virtual_id"`
	ContributionID       uint64 `json:"contribution_id"`
	ParentContributionID uint64 `json:"parent_contribution_id,omitempty"`
	Contributor          string `json:"contributor"`
	CoreType             uint8  `json:"core_type"`
}

// AgentCreatedEventData is the decoded AgentCreated payload.
type AgentCreatedEventData struct {
	VirtualID uint64  `json:"virtual_id"`
	Founder   string  `json:"founder"`
	DAO       string  `json:"dao"`
	Token     string  `json:"token"`
	TBA       string  `json:"tba"`
	CoreTypes []uint8 `json:"core_types"`
}

// AgentGraduatedEventData is the decoded AgentGraduated payload.
type AgentGraduatedEventData struct {
	VirtualID uint64 `json:"virtual_id"`
}

// LaunchedEventData is the decoded Launched payload.
type LaunchedEventData struct {
	Token string `json:"token"`
	Pair  string `json:"pair"`
}

// LaunchCallData carries the launch function-call inputs delivered
// separately from the Launched event, correlated by transaction hash.
type LaunchCallData struct {
	Name           string   `json:"name"`
	Ticker         string   `json:"ticker"`
	Description    string   `json:"description"`
	ImageURL       string   `json:"image_url"`
	URLs           []string `json:"urls"`
	Cores          []uint8  `json:"cores"`
	PurchaseAmount string   `json:"purchase_amount"`
}
