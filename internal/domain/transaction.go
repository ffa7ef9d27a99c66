package domain

import "math/big"

// Transaction represents one normal transaction from the history provider.
// Lists handed to the analysis layer are ordered ascending by timestamp, so
// the first element is the wallet's earliest transaction.
type Transaction struct {
	Hash            string
	From            string
	To              string // empty for contract creation
	Value           string
	Timestamp       int64 // unix seconds
	Failed          bool
	ContractAddress string
}

// TokenTransfer represents one ERC-20 transfer event involving the wallet.
type TokenTransfer struct {
	ContractAddress string
	From            string
	To              string
	Value           *big.Int
	Timestamp       int64
}
