package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// ListEnvelope wraps every list response.
type ListEnvelope[T any] struct {
	Sort  domain.SortOrder `json:"sort"`
	Count int              `json:"count"`
	Data  []T              `json:"data"`
}

func newList[T any](order domain.SortOrder, items []T) ListEnvelope[T] {
	if items == nil {
		items = []T{}
	}
	return ListEnvelope[T]{Sort: order, Count: len(items), Data: items}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the JSON body into dst and runs its validate tags.
func decodeValid(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}

func sortParam(r *http.Request) (domain.SortOrder, error) {
	return domain.ParseSortOrder(r.URL.Query().Get("sort"))
}
