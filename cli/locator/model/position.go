package model

// Position is the canonical last-known-position record. It is produced by
// the storage decoder and never persisted: producers write records in one of
// several physical encodings, and every encoding normalizes to this shape.
type Position struct {
	EntityID    string                 `json:"entity_id"`
	Lat         *float64               `json:"lat"`
	Lng         *float64               `json:"lng"`
	Timestamp   *string                `json:"timestamp"`
	ReceivedAt  *string                `json:"received_at"`
	UpdatedAt   *string                `json:"updated_at"`
	Metadata    map[string]interface{} `json:"metadata"`
	DisplayName *string                `json:"display_name"`
	RetrievedAt string                 `json:"retrieved_at"`
}

// Name returns the human-readable label, falling back to the entity id.
func (p *Position) Name() string {
	if p.DisplayName != nil && *p.DisplayName != "" {
		return *p.DisplayName
	}
	return p.EntityID
}
