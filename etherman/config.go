package etherman

import (
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	"github.com/custodia-chain/custodia/config/types"
	"github.com/ethereum/go-ethereum/common"
)

// Config holds the configuration of the ledger client.
type Config struct {
	// URL is the RPC URL of the node the client connects to
	URL string `mapstructure:"URL"`
	// BatchRegistryAddr is the address of the SupplyChain contract
	BatchRegistryAddr common.Address `mapstructure:"BatchRegistryAddr"`
	// SenderAddr is the address used to send the state-changing txs
	SenderAddr common.Address `mapstructure:"SenderAddr"`
	// GasOffset is added on top of the estimated gas of every tx
	GasOffset uint64 `mapstructure:"GasOffset"`
	// WaitPeriodMonitorTx is the period between status polls of a submitted tx
	WaitPeriodMonitorTx types.Duration `mapstructure:"WaitPeriodMonitorTx"`
	// ConfirmationTimeout bounds the confirmation wait of a submitted tx.
	// Hitting it means the tx is indeterminate, not failed.
	ConfirmationTimeout types.Duration `mapstructure:"ConfirmationTimeout"`
	// EthTxManager is the configuration of the tx monitor
	EthTxManager ethtxmanager.Config `mapstructure:"EthTxManager"`
}
