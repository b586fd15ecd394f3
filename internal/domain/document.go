package domain

// DocumentChunk is an indexed slice of listing copy with its embedding.
// Chunks are written by the offline indexer and read-only at serve time.
type DocumentChunk struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// Listing is a property unit as described in the indexer input file
type Listing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       string  `json:"price,omitempty"`
	Rooms       float64 `json:"rooms,omitempty"`
	AreaM2      float64 `json:"area_m2,omitempty"`
	Floor       int     `json:"floor,omitempty"`
	Status      string  `json:"status,omitempty"` // available, reserved, sold
}
