package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
	"github.com/caspermolin/website-sub000/internal/domain/services"
)

// Collection write actions.
const (
	ActionCreate     = "create"
	ActionAdd        = "add"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionBulkDelete = "bulkDelete"
)

// ErrUnknownAction is returned for actions outside the supported set.
var ErrUnknownAction = errors.New("unknown action")

// ItemID is a record id given as a JSON string or number.
type ItemID string

// UnmarshalJSON accepts "abc" and 42 alike.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// ActionRequest is a single write against a collection.
type ActionRequest struct {
	Action  string          `json:"action"`
	Item    entities.Record `json:"item,omitempty"`
	ItemID  ItemID          `json:"itemId,omitempty"`
	ItemIDs []ItemID        `json:"itemIds,omitempty"`
}

// ActionResult is returned for a successful write.
type ActionResult struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// CollectionHandler handles collection reads and writes.
type CollectionHandler struct {
	service *services.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(service *services.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		service: service,
	}
}

// HandleList returns every record of the collection.
func (h *CollectionHandler) HandleList(ctx context.Context, name string) ([]entities.Record, error) {
	return h.service.List(ctx, name)
}

// HandleGet returns a single record by id.
func (h *CollectionHandler) HandleGet(ctx context.Context, name, id string) (entities.Record, error) {
	return h.service.Get(ctx, name, id)
}

// HandleAction applies a write request to the collection.
func (h *CollectionHandler) HandleAction(ctx context.Context, name string, req ActionRequest) (*ActionResult, error) {
	switch req.Action {
	case ActionCreate, ActionAdd:
		if req.Item == nil {
			return nil, fmt.Errorf("%w: item is required", services.ErrInvalidRecord)
		}
		rec, err := h.service.Add(ctx, name, req.Item)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Success: true, Data: rec}, nil

	case ActionUpdate:
		if req.Item == nil {
			return nil, fmt.Errorf("%w: item is required", services.ErrInvalidRecord)
		}
		item := req.Item.Clone()
		if item.ID() == "" && req.ItemID != "" {
			if err := item.Set("id", string(req.ItemID)); err != nil {
				return nil, err
			}
		}
		if err := h.service.Update(ctx, name, item); err != nil {
			return nil, err
		}
		return &ActionResult{Success: true}, nil

	case ActionDelete:
		if req.ItemID == "" {
			return nil, fmt.Errorf("%w: itemId is required", services.ErrInvalidRecord)
		}
		if err := h.service.Delete(ctx, name, string(req.ItemID)); err != nil {
			return nil, err
		}
		return &ActionResult{Success: true}, nil

	case ActionBulkDelete:
		if len(req.ItemIDs) == 0 {
			return nil, fmt.Errorf("%w: itemIds is required", services.ErrInvalidRecord)
		}
		ids := make([]string, len(req.ItemIDs))
		for i, id := range req.ItemIDs {
			ids[i] = string(id)
		}
		removed, err := h.service.BulkDelete(ctx, name, ids)
		if err != nil {
			return nil, err
		}
		return &ActionResult{Success: true, Data: map[string]int{"deleted": removed}}, nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, req.Action)
	}
}
