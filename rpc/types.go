package rpc

// CreateBatchRequest is the wire form of a batch creation.
type CreateBatchRequest struct {
	ProductName     string `json:"productName"`
	EwayBillNo      string `json:"ewayBillNo"`
	Location        string `json:"location"`
	InternalBatchNo string `json:"internalBatchNo,omitempty"`
	Quantity        uint64 `json:"quantity,omitempty"`
	Cost            uint64 `json:"cost,omitempty"`
	Description     string `json:"description,omitempty"`
}

// BatchInfo is the wire form of a batch projection row.
type BatchInfo struct {
	BatchID           string `json:"batchId"`
	ProductName       string `json:"productName"`
	Manufacturer      string `json:"manufacturer"`
	CurrentHolder     string `json:"currentHolder"`
	IntendedRecipient string `json:"intendedRecipient,omitempty"`
	Status            string `json:"status"`
	EwayBillNo        string `json:"ewayBillNo"`
	CurrentLocation   string `json:"currentLocation"`
	InternalBatchNo   string `json:"internalBatchNo,omitempty"`
	Quantity          uint64 `json:"quantity,omitempty"`
	Cost              uint64 `json:"cost,omitempty"`
	Description       string `json:"description,omitempty"`
	CreatedAt         int64  `json:"createdAt"`
	UpdatedAt         int64  `json:"updatedAt"`
	TrackingURL       string `json:"trackingUrl"`
}

// HistoryEntry is the wire form of one audit trail event.
type HistoryEntry struct {
	EventType string `json:"eventType"`
	Actor     string `json:"actor"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// TrackingInfo carries the QR tracking token of a batch.
type TrackingInfo struct {
	BatchID     string `json:"batchId"`
	Token       string `json:"token"`
	TrackingURL string `json:"trackingUrl"`
}
