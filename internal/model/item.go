package model

// Item is the domain model for a todo entry.
// ID is assigned by the allocator, never by the caller.
type Item struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}
