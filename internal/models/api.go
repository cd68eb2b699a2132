package models

// OrderAck is the order endpoint's acknowledgment. Success is Status 200 in
// the body, independent of the HTTP status.
type OrderAck struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Succeeded reports an application-level success
func (a *OrderAck) Succeeded() bool {
	return a != nil && a.Status == 200
}

// LookupRequest is the numbers-consultation payload
type LookupRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LookupResult is the numbers-consultation response
type LookupResult struct {
	Message string `json:"message"`
}

// MessageBody is the error body shape shared by every endpoint
type MessageBody struct {
	Message string `json:"message"`
}
