// Package resolve derives entity keys and provides load-or-create access
// on top of the entity store.
package resolve

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SecondsPerDay is the day-bucket width for all daily aggregates.
const SecondsPerDay = 86400

// DayStart truncates a timestamp to the start of its UTC day.
func DayStart(timestamp uint64) uint64 {
	return timestamp - timestamp%SecondsPerDay
}

// HourOfDay returns the 0-23 hour slot for a timestamp.
func HourOfDay(timestamp uint64) int {
	return int(timestamp / 3600 % 24)
}

// Address lowercases a hex address for use as a key component.
func Address(addr string) string {
	return strings.ToLower(addr)
}

// TokenKey is the key for TokenSupply and TokenEconomics rows.
func TokenKey(token string) string {
	return Address(token)
}

// DayStatsKey keys the mutable per-day TokenDayStats row.
func DayStatsKey(token string, timestamp uint64) string {
	return fmt.Sprintf("%s-%d", Address(token), DayStart(timestamp))
}

// EconomicSnapshotKey keys one immutable snapshot per (token, timestamp).
func EconomicSnapshotKey(token string, timestamp uint64) string {
	return fmt.Sprintf("%s-%d", Address(token), timestamp)
}

// AgentKey keys the Agent row by its numeric identifier.
func AgentKey(virtualID uint64) string {
	return fmt.Sprintf("%d", virtualID)
}

// AgentDayKey keys the per-day AgentDayData row.
func AgentDayKey(agentID string, timestamp uint64) string {
	return fmt.Sprintf("%s-%d", agentID, DayStart(timestamp))
}

// AgentTimestampKey keys immutable agent-scoped snapshots.
func AgentTimestampKey(agentID string, timestamp uint64) string {
	return fmt.Sprintf("%s-%d", agentID, timestamp)
}

// ValidatorKey keys one Validator row per (agent, validator address).
func ValidatorKey(agentID, validator string) string {
	return fmt.Sprintf("%s-%s", agentID, Address(validator))
}

// NetworkDayKey keys the day-bucketed NetworkMetrics row.
func NetworkDayKey(timestamp uint64) string {
	return fmt.Sprintf("%d", DayStart(timestamp))
}

// TradeSnapshotID content-hashes token, timestamp, and transaction hash so
// snapshots collide deterministically on replay instead of double-writing.
func TradeSnapshotID(token string, timestamp uint64, txHash string) string {
	return keccakKey(
		common.HexToAddress(token).Bytes(),
		timestampWord(timestamp),
		common.HexToHash(txHash).Bytes(),
	)
}

// TraderStatsID content-hashes token, trader, and the day-bucket start.
func TraderStatsID(token, trader string, timestamp uint64) string {
	return keccakKey(
		common.HexToAddress(token).Bytes(),
		common.HexToAddress(trader).Bytes(),
		timestampWord(DayStart(timestamp)),
	)
}

// timestampWord encodes a timestamp as a 32-byte big-endian word.
func timestampWord(timestamp uint64) []byte {
	return common.BigToHash(new(big.Int).SetUint64(timestamp)).Bytes()
}

func keccakKey(parts ...[]byte) string {
	return common.BytesToHash(crypto.Keccak256(parts...)).Hex()
}
