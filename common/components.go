package common

const (
	// RPC name to identify the rpc component
	RPC = "rpc"
	// RECONCILER name to identify the consistency-gap reconciler component
	RECONCILER = "reconciler"
)
