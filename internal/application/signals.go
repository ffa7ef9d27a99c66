package application

import (
	"time"

	"walletrep/internal/domain"
)

// WalletAgeDays returns the whole days between now and the wallet's first
// transaction. The list is assumed ascending by timestamp; the first element
// is used directly. An empty list means age 0.
func WalletAgeDays(now time.Time, txs []domain.Transaction) int {
	if len(txs) == 0 {
		return 0
	}
	first := time.Unix(txs[0].Timestamp, 0)
	days := int(now.Sub(first).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// MixerInteraction reports whether any transaction was sent to the Tornado
// Cash router. Address comparison is case-insensitive; stops on first match.
func MixerInteraction(txs []domain.Transaction) bool {
	for _, tx := range txs {
		if domain.SameAddress(tx.To, domain.TornadoCashRouter) {
			return true
		}
	}
	return false
}

// FailedTxStats returns the number of failed transactions and the failure
// rate as a percentage of the full list. Both are 0 for an empty list.
func FailedTxStats(txs []domain.Transaction) (int, float64) {
	if len(txs) == 0 {
		return 0, 0.0
	}
	failed := 0
	for _, tx := range txs {
		if tx.Failed {
			failed++
		}
	}
	return failed, float64(failed) / float64(len(txs)) * 100
}
