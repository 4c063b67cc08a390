package etherman

import "github.com/ethereum/go-ethereum/common"

// supplyChainABI is the hand-maintained ABI of the SupplyChain contract. The
// contract is small enough that generated bindings are not worth carrying.
const supplyChainABI = `[
	{
		"type": "function",
		"name": "createBatch",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "batchId", "type": "bytes16"},
			{"name": "ewayBillNo", "type": "string"},
			{"name": "location", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "transferBatch",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "batchId", "type": "bytes16"},
			{"name": "to", "type": "address"},
			{"name": "location", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "receiveBatch",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "batchId", "type": "bytes16"},
			{"name": "location", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "grantDistributorRole",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "grantRetailerRole",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "revokeDistributorRole",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "revokeRetailerRole",
		"stateMutability": "nonpayable",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": []
	},
	{
		"type": "function",
		"name": "isManufacturer",
		"stateMutability": "view",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "isDistributor",
		"stateMutability": "view",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "isRetailer",
		"stateMutability": "view",
		"inputs": [{"name": "wallet", "type": "address"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "getBatch",
		"stateMutability": "view",
		"inputs": [{"name": "batchId", "type": "bytes16"}],
		"outputs": [
			{
				"name": "",
				"type": "tuple",
				"components": [
					{"name": "id", "type": "bytes16"},
					{"name": "creator", "type": "address"},
					{"name": "currentHolder", "type": "address"},
					{"name": "intendedRecipient", "type": "address"},
					{"name": "status", "type": "uint8"},
					{"name": "ewayBillNo", "type": "string"},
					{"name": "currentLocation", "type": "string"},
					{"name": "createdAt", "type": "uint64"},
					{"name": "updatedAt", "type": "uint64"}
				]
			}
		]
	},
	{
		"type": "function",
		"name": "getBatchHistory",
		"stateMutability": "view",
		"inputs": [{"name": "batchId", "type": "bytes16"}],
		"outputs": [
			{
				"name": "",
				"type": "tuple[]",
				"components": [
					{"name": "eventType", "type": "uint8"},
					{"name": "actor", "type": "address"},
					{"name": "location", "type": "string"},
					{"name": "timestamp", "type": "uint64"}
				]
			}
		]
	},
	{
		"type": "event",
		"name": "BatchCreated",
		"inputs": [
			{"name": "batchId", "type": "bytes16", "indexed": true},
			{"name": "creator", "type": "address", "indexed": true}
		],
		"anonymous": false
	},
	{
		"type": "event",
		"name": "BatchTransferred",
		"inputs": [
			{"name": "batchId", "type": "bytes16", "indexed": true},
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true}
		],
		"anonymous": false
	},
	{
		"type": "event",
		"name": "BatchReceived",
		"inputs": [
			{"name": "batchId", "type": "bytes16", "indexed": true},
			{"name": "by", "type": "address", "indexed": true}
		],
		"anonymous": false
	}
]`

// contractBatch mirrors the getBatch tuple layout for abi unpacking.
type contractBatch struct {
	Id                [16]byte
	Creator           common.Address
	CurrentHolder     common.Address
	IntendedRecipient common.Address
	Status            uint8
	EwayBillNo        string
	CurrentLocation   string
	CreatedAt         uint64
	UpdatedAt         uint64
}

// contractHistoryEvent mirrors the getBatchHistory tuple layout.
type contractHistoryEvent struct {
	EventType uint8
	Actor     common.Address
	Location  string
	Timestamp uint64
}
