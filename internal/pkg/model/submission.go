package model

// Submission acknowledges a transaction handed to the signer. Reference is a transaction
// hash or, for the command signer, a command id.
type Submission struct {
	Method    string   `json:"method"`
	TokenIds  []uint64 `json:"tokenIds"`
	Reference string   `json:"reference"`
}
