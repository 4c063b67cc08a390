package config

// DefaultValues is the default configuration
const DefaultValues = `
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

# Ledger client configuration
[Etherman]
  # URL is the RPC URL of the node holding the SupplyChain contract
  URL = "http://localhost:8545"
  # BatchRegistryAddr is the address of the SupplyChain contract
  BatchRegistryAddr = "0x0000000000000000000000000000000000000000"
  # SenderAddr is the address used to send the state-changing txs
  SenderAddr = "0x0000000000000000000000000000000000000000"
  # GasOffset is added on top of the estimated gas of every tx
  GasOffset = 80000
  # WaitPeriodMonitorTx is the period between status polls of a submitted tx
  WaitPeriodMonitorTx = "1s"
  # ConfirmationTimeout bounds the confirmation wait of a submitted tx
  ConfirmationTimeout = "2m"
  [Etherman.EthTxManager]
    # FrequencyToMonitorTxs frequency of the resending failed txs
    FrequencyToMonitorTxs = "1s"
    # WaitTxToBeMined time to wait after transaction was sent to the ethereum
    WaitTxToBeMined = "2m"
    # GetReceiptMaxTime is the max time to wait to get the receipt of the mined transaction
    GetReceiptMaxTime = "250ms"
    # GetReceiptWaitInterval is the time to sleep before trying to get the receipt of the mined transaction
    GetReceiptWaitInterval = "1s"
    # PrivateKeys defines all the key store files that are going
    # to be read in order to provide the private keys to sign the txs
    PrivateKeys = [
	    {Path = "/app/keystore/custodia.keystore", Password = "testonly"},
    ]
    # ForcedGas is the amount of gas to be forced in case of gas estimation error
    ForcedGas = 0
    # GasPriceMarginFactor is used to multiply the suggested gas price provided by the network
    # in order to allow a different gas price to be set for all the transactions and making it
    # easier to have the txs prioritized in the pool, default value is 1.
    GasPriceMarginFactor = 1
    # MaxGasPriceLimit helps avoiding transactions to be sent over an specified
    # gas price amount, default value is 0, which means no limit.
    MaxGasPriceLimit = 0
    # StoragePath is the path of the internal storage
    StoragePath = "ethtxmanager.sqlite"
    # ReadPendingL1Txs is a flag to enable the reading of pending txs
    ReadPendingL1Txs = false
    # SafeStatusL1NumberOfBlocks overwrites the number of blocks to consider a tx as safe
    # 0 means that the default value will be used
    SafeStatusL1NumberOfBlocks = 0
    # FinalizedStatusL1NumberOfBlocks overwrites the number of blocks to consider a tx as finalized
    # 0 means that the default value will be used
    FinalizedStatusL1NumberOfBlocks = 0
    [Etherman.EthTxManager.Etherman]
      # URL is the URL of the Ethereum node
      URL = "http://localhost:8545"
      # allow that gas price calculation use multiples sources
      MultiGasProvider = false
      # L1ChainID is the chain ID of the chain the txs are sent to
      L1ChainID = 1337

# Projection store configuration
[Inventory]
  # DBPath path of the sqlite projection database
  DBPath = "/tmp/custodia/inventory.sqlite"

# Consistency-gap reconciler configuration
[Reconciler]
  # RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicking,
  # any number smaller than zero will be considered as unlimited retries
  MaxRetryAttemptsAfterError = -1
  # WaitOnEmptyQueue is the time waited before re-polling an empty gap queue
  WaitOnEmptyQueue = "5s"
  # ReapAbsentAfter is how long a batch must stay absent from the ledger after
  # its gap was detected before the provisional projection row is removed
  ReapAbsentAfter = "5m"

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5576
  # ReadTimeout is the HTTP server read timeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10

# QR tracking-token issuer configuration
[QR]
  # TokenSecret is the secret bound into every tracking token
  TokenSecret = "localdev-secret"
  # TrackingBaseURL is the public base URL embedded into QR tracking links
  TrackingBaseURL = "http://localhost:5576"
`
