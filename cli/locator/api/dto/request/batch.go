package request

// Batch is the body of a batch position lookup.
type Batch struct {
	IDs  []string `json:"ids"`
	View string   `json:"view"`
}
