package application

import (
	"math/big"

	"walletrep/internal/domain"
)

var (
	ten  = big.NewInt(10)
	nine = big.NewInt(9)
)

// DetectRugPulls counts deploy-and-dump patterns: contracts the wallet
// deployed where it later sent out more than 90% of everything it ever
// received through that contract.
//
// A transaction counts as a deployment iff it carries a contract address and
// has no recipient. A contract with zero total inflow is never flagged, and
// the 90% comparison is strict.
func DetectRugPulls(wallet string, txs []domain.Transaction, transfers []domain.TokenTransfer) int {
	if len(txs) == 0 || len(transfers) == 0 {
		return 0
	}

	wallet = domain.NormalizeAddress(wallet)
	deployed := make(map[string]struct{})
	for _, tx := range txs {
		if tx.ContractAddress != "" && tx.To == "" {
			deployed[domain.NormalizeAddress(tx.ContractAddress)] = struct{}{}
		}
	}
	if len(deployed) == 0 {
		return 0
	}

	count := 0
	for contract := range deployed {
		totalIn := new(big.Int)
		totalOut := new(big.Int)
		for _, transfer := range transfers {
			if transfer.Value == nil || domain.NormalizeAddress(transfer.ContractAddress) != contract {
				continue
			}
			if domain.NormalizeAddress(transfer.To) == wallet {
				totalIn.Add(totalIn, transfer.Value)
			}
			if domain.NormalizeAddress(transfer.From) == wallet {
				totalOut.Add(totalOut, transfer.Value)
			}
		}
		if totalIn.Sign() <= 0 {
			continue
		}
		// out/in > 0.90, compared exactly as 10*out > 9*in.
		lhs := new(big.Int).Mul(totalOut, ten)
		rhs := new(big.Int).Mul(totalIn, nine)
		if lhs.Cmp(rhs) > 0 {
			count++
		}
	}
	return count
}
