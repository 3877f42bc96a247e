package pagination

// Page represents one continuation-based page of results
// Generic type T allows reuse across different entity types
type Page[T any] struct {
	Items []T           `json:"items"`
	Next  *Continuation `json:"next,omitempty"`
}

// NewPage creates a page from the received items and the optional continuation
func NewPage[T any](items []T, next *Continuation) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Next:  next,
	}
}

// HasMore reports whether the upstream issued a continuation for this page
func (p *Page[T]) HasMore() bool {
	return p != nil && p.Next != nil
}
