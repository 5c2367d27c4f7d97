package ledger

import "encoding/json"

// Party is one party known to the ledger gateway.
type Party struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
	IsLocal     bool   `json:"isLocal"`
}

// ActiveContract is a contract instance returned by the gateway. The payload
// stays raw JSON; typed decoding happens in the contracts package.
type ActiveContract struct {
	ContractID  string          `json:"contractId"`
	TemplateID  string          `json:"templateId"`
	Payload     json.RawMessage `json:"payload"`
	Signatories []string        `json:"signatories"`
	Observers   []string        `json:"observers"`
}

// ExerciseResult is the outcome of exercising a choice on a contract.
type ExerciseResult struct {
	Result json.RawMessage   `json:"exerciseResult"`
	Events []json.RawMessage `json:"events"`
}

// envelope is the gateway's uniform response wrapper: a result on success, a
// list of error strings otherwise.
type envelope struct {
	Result json.RawMessage `json:"result"`
	Status int             `json:"status"`
	Errors []string        `json:"errors"`
}

type queryRequest struct {
	TemplateIDs []string `json:"templateIds"`
}

type createRequest struct {
	TemplateID string `json:"templateId"`
	Payload    any    `json:"payload"`
}

type exerciseRequest struct {
	TemplateID string `json:"templateId"`
	ContractID string `json:"contractId"`
	Choice     string `json:"choice"`
	Argument   any    `json:"argument"`
}
