package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
)

type CustodiaClientInterface interface {
	CreateBatch(principalID string, req CreateBatchRequest) (*BatchInfo, error)
	TransferBatch(principalID, batchID, to, location string) error
	ReceiveBatch(principalID, batchID, location string) error
	GetBatch(batchID string) (*BatchInfo, error)
	ListBatches(principalID string) ([]BatchInfo, error)
	BatchHistory(batchID string) ([]HistoryEntry, error)
	GrantRole(principalID, wallet, role string) error
	RevokeRole(principalID, wallet, role string) error
	TrackingToken(batchID string) (*TrackingInfo, error)
}

func (c *Client) CreateBatch(principalID string, req CreateBatchRequest) (*BatchInfo, error) {
	response, err := rpc.JSONRPCCall(c.url, "custodia_createBatch", principalID, req)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result BatchInfo
	return &result, json.Unmarshal(response.Result, &result)
}

func (c *Client) TransferBatch(principalID, batchID, to, location string) error {
	response, err := rpc.JSONRPCCall(c.url, "custodia_transferBatch", principalID, batchID, to, location)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return nil
}

func (c *Client) ReceiveBatch(principalID, batchID, location string) error {
	response, err := rpc.JSONRPCCall(c.url, "custodia_receiveBatch", principalID, batchID, location)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return nil
}

func (c *Client) GetBatch(batchID string) (*BatchInfo, error) {
	response, err := rpc.JSONRPCCall(c.url, "custodia_getBatch", batchID)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result BatchInfo
	return &result, json.Unmarshal(response.Result, &result)
}

func (c *Client) ListBatches(principalID string) ([]BatchInfo, error) {
	response, err := rpc.JSONRPCCall(c.url, "custodia_listBatches", principalID)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result []BatchInfo
	return result, json.Unmarshal(response.Result, &result)
}

func (c *Client) BatchHistory(batchID string) ([]HistoryEntry, error) {
	response, err := rpc.JSONRPCCall(c.url, "custodia_batchHistory", batchID)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result []HistoryEntry
	return result, json.Unmarshal(response.Result, &result)
}

func (c *Client) GrantRole(principalID, wallet, role string) error {
	response, err := rpc.JSONRPCCall(c.url, "custodia_grantRole", principalID, wallet, role)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return nil
}

func (c *Client) RevokeRole(principalID, wallet, role string) error {
	response, err := rpc.JSONRPCCall(c.url, "custodia_revokeRole", principalID, wallet, role)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return nil
}

func (c *Client) TrackingToken(batchID string) (*TrackingInfo, error) {
	response, err := rpc.JSONRPCCall(c.url, "custodia_trackingToken", batchID)
	if err != nil {
		return nil, err
	}
	if response.Error != nil {
		return nil, fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	var result TrackingInfo
	return &result, json.Unmarshal(response.Result, &result)
}
