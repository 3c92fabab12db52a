package domain

import "github.com/shopspring/decimal"

// Chain identifies the blockchain a wallet balance lives on.
type Chain string

const (
	ChainOsmosis  Chain = "Osmosis"
	ChainEthereum Chain = "Ethereum"
	ChainArbitrum Chain = "Arbitrum"
	ChainZilliqa  Chain = "Zilliqa"
	ChainNeo      Chain = "Neo"
)

// WalletBalance is an ephemeral per-chain holding used as ranking input.
type WalletBalance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Chain    Chain           `json:"chain"`
}
