package streaming

import (
	"encoding/json"
	"errors"
	"time"

	"walletrep/internal/domain"
)

type MessageType string

const MessageTypeScore MessageType = "score"

// Message is the wire form of one finished scoring run.
type Message struct {
	Type      MessageType      `json:"type"`
	TraceID   string           `json:"trace_id,omitempty"`
	Address   string           `json:"address"`
	Score     int              `json:"score"`
	ScoredAt  int64            `json:"scored_at"`
	Signals   Signals          `json:"signals"`
	Breakdown []BreakdownEntry `json:"breakdown,omitempty"`
}

type Signals struct {
	AgeDays          int     `json:"age_days"`
	MixerInteraction bool    `json:"mixer_interaction"`
	FailedTxCount    int     `json:"failed_tx_count"`
	FailedTxRate     float64 `json:"failed_tx_rate"`
	RugPullCount     int     `json:"rug_pull_count"`
	SwapCount        int     `json:"swap_count"`
	LiquidationCount int     `json:"liquidation_count"`
	VoteCount        int     `json:"vote_count"`
}

type BreakdownEntry struct {
	Label  string `json:"label"`
	Delta  int    `json:"delta"`
	Detail string `json:"detail,omitempty"`
}

func FromReport(report domain.Report) Message {
	breakdown := make([]BreakdownEntry, 0, len(report.Breakdown))
	for _, entry := range report.Breakdown {
		breakdown = append(breakdown, BreakdownEntry{Label: entry.Label, Delta: entry.Delta, Detail: entry.Detail})
	}
	return Message{
		Type:     MessageTypeScore,
		Address:  report.Address,
		Score:    report.Score,
		ScoredAt: report.ScoredAt.Unix(),
		Signals: Signals{
			AgeDays:          report.Signals.AgeDays,
			MixerInteraction: report.Signals.MixerInteraction,
			FailedTxCount:    report.Signals.FailedTxCount,
			FailedTxRate:     report.Signals.FailedTxRate,
			RugPullCount:     report.Signals.RugPullCount,
			SwapCount:        report.Signals.SwapCount,
			LiquidationCount: report.Signals.LiquidationCount,
			VoteCount:        report.Signals.VoteCount,
		},
		Breakdown: breakdown,
	}
}

func (m Message) ToReport() domain.Report {
	breakdown := make([]domain.BreakdownEntry, 0, len(m.Breakdown))
	for _, entry := range m.Breakdown {
		breakdown = append(breakdown, domain.BreakdownEntry{Label: entry.Label, Delta: entry.Delta, Detail: entry.Detail})
	}
	return domain.Report{
		Address: m.Address,
		Score:   m.Score,
		Signals: domain.SignalSet{
			AgeDays:          m.Signals.AgeDays,
			MixerInteraction: m.Signals.MixerInteraction,
			FailedTxCount:    m.Signals.FailedTxCount,
			FailedTxRate:     m.Signals.FailedTxRate,
			RugPullCount:     m.Signals.RugPullCount,
			SwapCount:        m.Signals.SwapCount,
			LiquidationCount: m.Signals.LiquidationCount,
			VoteCount:        m.Signals.VoteCount,
		},
		Breakdown: breakdown,
		ScoredAt:  time.Unix(m.ScoredAt, 0).UTC(),
	}
}

func Encode(msg Message) ([]byte, error) {
	if msg.Type == "" {
		return nil, errors.New("message type is required")
	}
	if msg.Address == "" {
		return nil, errors.New("address is required")
	}
	return json.Marshal(msg)
}

func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if msg.Type == "" {
		return Message{}, errors.New("message type is missing")
	}
	if msg.Address == "" {
		return Message{}, errors.New("address is missing")
	}
	return msg, nil
}
