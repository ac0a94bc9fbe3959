package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-service-bootstrap/internal/logger"
	"github.com/MKhiriev/go-service-bootstrap/internal/store"
	"github.com/MKhiriev/go-service-bootstrap/internal/utils"
	"github.com/MKhiriev/go-service-bootstrap/models"
)

// inventoryError is a public application error with its own code.
type inventoryError struct {
	message string
	code    string
	status  int
}

func (e *inventoryError) Error() string     { return e.message }
func (e *inventoryError) ErrorCode() string { return e.code }
func (e *inventoryError) HTTPStatus() int   { return e.status }

var (
	errItemNotFound  = &inventoryError{message: MsgItemNotFound, code: CodeItemNotFound, status: http.StatusNotFound}
	errItemExists    = &inventoryError{message: MsgItemExists, code: CodeItemExists, status: http.StatusConflict}
	errInvalidItemID = &inventoryError{message: MsgInvalidItemID, code: CodeInvalidItemID, status: http.StatusBadRequest}
)

// Inventory serves the item API on top of an item repository.
type Inventory struct {
	items store.ItemRepository
}

func NewInventory(items store.ItemRepository) *Inventory {
	return &Inventory{items: items}
}

// Routes returns the route table of the inventory API.
func (inv *Inventory) Routes() []models.Route {
	return []models.Route{
		{Method: http.MethodGet, Pattern: "/items", Handler: inv.list},
		{Method: http.MethodPost, Pattern: "/items", Handler: inv.create},
		{Method: http.MethodGet, Pattern: "/items/{id}", Handler: inv.get},
		{Method: http.MethodDelete, Pattern: "/items/{id}", Handler: inv.delete},
		{Method: http.MethodGet, Pattern: "/reports", Handler: inv.report},
	}
}

func (inv *Inventory) list(w http.ResponseWriter, r *http.Request) error {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		// the schema guarantees an integer in range
		limit, _ = strconv.Atoi(raw)
	}

	items, err := inv.items.ListItems(r.Context(), limit)
	if err != nil {
		return err
	}

	_, err = utils.WriteJSON(w, items, http.StatusOK)
	return err
}

func (inv *Inventory) create(w http.ResponseWriter, r *http.Request) error {
	var item models.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		return err
	}

	item, err := inv.items.CreateItem(r.Context(), item)
	if err != nil {
		return inventoryErr(err)
	}

	logger.FromRequest(r).Info().Int64("item_id", item.ID).Msg("item created")

	_, err = utils.WriteJSON(w, item, http.StatusCreated)
	return err
}

func (inv *Inventory) get(w http.ResponseWriter, r *http.Request) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}

	item, err := inv.items.GetItem(r.Context(), id)
	if err != nil {
		return inventoryErr(err)
	}

	_, err = utils.WriteJSON(w, item, http.StatusOK)
	return err
}

func (inv *Inventory) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := itemID(r)
	if err != nil {
		return err
	}

	if err = inv.items.DeleteItem(r.Context(), id); err != nil {
		return inventoryErr(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// report summarizes the inventory for the authenticated caller.
func (inv *Inventory) report(w http.ResponseWriter, r *http.Request) error {
	claims, _ := utils.GetClaimsFromContext(r.Context())

	summary, err := inv.items.Summary(r.Context())
	if err != nil {
		return err
	}

	_, err = utils.WriteJSON(w, map[string]any{
		"requestedBy": claims.Subject,
		"items":       summary.Count,
		"totalValue":  summary.TotalValue,
	}, http.StatusOK)
	return err
}

// inventoryErr replaces store sentinels with their public errors. Anything
// else is left for the pipeline to report as unexpected.
func inventoryErr(err error) error {
	switch {
	case errors.Is(err, store.ErrItemNotFound):
		return errItemNotFound
	case errors.Is(err, store.ErrItemExists):
		return errItemExists
	default:
		return err
	}
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidItemID
	}
	return id, nil
}
