package application

import (
	"math/big"
	"testing"

	"walletrep/internal/domain"
)

const (
	wallet   = "0x00000000000000000000000000000000000000aa"
	contract = "0x00000000000000000000000000000000000000cc"
	outsider = "0x00000000000000000000000000000000000000bb"
)

func deployTx(contractAddr string) domain.Transaction {
	return domain.Transaction{From: wallet, To: "", ContractAddress: contractAddr}
}

func transfer(from, to string, value int64) domain.TokenTransfer {
	return domain.TokenTransfer{ContractAddress: contract, From: from, To: to, Value: big.NewInt(value)}
}

func TestDetectRugPullsEmptyInputs(t *testing.T) {
	txs := []domain.Transaction{deployTx(contract)}
	transfers := []domain.TokenTransfer{transfer(outsider, wallet, 1000)}

	if got := DetectRugPulls(wallet, nil, transfers); got != 0 {
		t.Fatalf("expected 0 with no transactions, got %d", got)
	}
	if got := DetectRugPulls(wallet, txs, nil); got != 0 {
		t.Fatalf("expected 0 with no transfers, got %d", got)
	}
}

func TestDetectRugPullsNoDeployments(t *testing.T) {
	txs := []domain.Transaction{{From: wallet, To: outsider}}
	transfers := []domain.TokenTransfer{transfer(outsider, wallet, 1000)}
	if got := DetectRugPulls(wallet, txs, transfers); got != 0 {
		t.Fatalf("expected 0 without deployed contracts, got %d", got)
	}
}

func TestDetectRugPullsDumpAboveThreshold(t *testing.T) {
	txs := []domain.Transaction{deployTx(contract)}
	transfers := []domain.TokenTransfer{
		transfer(outsider, wallet, 1000),
		transfer(wallet, outsider, 950),
	}
	// 950/1000 = 0.95 > 0.90
	if got := DetectRugPulls(wallet, txs, transfers); got != 1 {
		t.Fatalf("expected 1 flagged contract, got %d", got)
	}
}

func TestDetectRugPullsExactThresholdNotFlagged(t *testing.T) {
	txs := []domain.Transaction{deployTx(contract)}
	transfers := []domain.TokenTransfer{
		transfer(outsider, wallet, 1000),
		transfer(wallet, outsider, 900),
	}
	// 900/1000 = 0.90 exactly; comparison is strict
	if got := DetectRugPulls(wallet, txs, transfers); got != 0 {
		t.Fatalf("expected 0 at exact threshold, got %d", got)
	}
}

func TestDetectRugPullsZeroInflowNeverFlagged(t *testing.T) {
	txs := []domain.Transaction{deployTx(contract)}
	transfers := []domain.TokenTransfer{transfer(wallet, outsider, 5000)}
	if got := DetectRugPulls(wallet, txs, transfers); got != 0 {
		t.Fatalf("expected 0 with zero inflow, got %d", got)
	}
}

func TestDetectRugPullsCaseInsensitiveAddresses(t *testing.T) {
	upperWallet := "0x00000000000000000000000000000000000000AA"
	txs := []domain.Transaction{deployTx("0x00000000000000000000000000000000000000CC")}
	transfers := []domain.TokenTransfer{
		transfer(outsider, "0x00000000000000000000000000000000000000Aa", 1000),
		transfer(upperWallet, outsider, 999),
	}
	if got := DetectRugPulls(upperWallet, txs, transfers); got != 1 {
		t.Fatalf("expected 1 flagged contract with mixed-case addresses, got %d", got)
	}
}

func TestDetectRugPullsIgnoresOtherContracts(t *testing.T) {
	txs := []domain.Transaction{deployTx(contract)}
	other := domain.TokenTransfer{
		ContractAddress: "0x00000000000000000000000000000000000000dd",
		From:            wallet,
		To:              outsider,
		Value:           big.NewInt(100000),
	}
	transfers := []domain.TokenTransfer{
		transfer(outsider, wallet, 1000),
		transfer(wallet, outsider, 100),
		other,
	}
	if got := DetectRugPulls(wallet, txs, transfers); got != 0 {
		t.Fatalf("expected 0, transfers on other contracts must not count, got %d", got)
	}
}
