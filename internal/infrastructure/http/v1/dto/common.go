// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// ListResponse wraps list results.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse never renders a null items array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// Persistence states reported on mutations.
const (
	PersistencePending   = "pending"
	PersistenceCommitted = "committed"
)

// MutationResponse is returned by every state-changing endpoint.
// Persistence is "committed" only when the client asked to wait.
type MutationResponse[T any] struct {
	Data        T      `json:"data"`
	Persistence string `json:"persistence"`
}
