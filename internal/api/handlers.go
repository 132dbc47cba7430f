package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chrisdamba/foodstore/internal/checkout"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type slotsResponse struct {
	StoreID     string                 `json:"store_id"`
	Fulfillment models.FulfillmentType `json:"fulfillment"`
	Slots       []scheduling.Slot      `json:"slots"`
}

type quoteResponse struct {
	Valid bool `json:"valid"`
	storefront.Quote
}

func (h *Handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// slots takes the cart as repeated item=productID:quantity query values.
func (h *Handlers) slots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	fulfillment := models.FulfillmentType(strings.TrimSpace(query.Get("fulfillment")))
	if fulfillment == "" {
		fulfillment = models.FulfillmentDelivery
	}
	if !fulfillment.Valid() {
		writeError(ctx, w, "invalid_request", fmt.Sprintf("unknown fulfillment type %q", fulfillment), http.StatusBadRequest)
		return
	}
	items, err := parseItems(query["item"])
	if err != nil {
		writeError(ctx, w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.svc.Open(ctx, chi.URLParam(r, "storeID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	lines, err := session.ResolveCart(items)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	slots := session.Slots(fulfillment, lines)
	if slots == nil {
		slots = []scheduling.Slot{}
	}
	writeJSON(w, http.StatusOK, slotsResponse{StoreID: session.Store().ID, Fulfillment: fulfillment, Slots: slots})
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	session, req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	q := session.Quote(req)
	writeJSON(w, http.StatusOK, quoteResponse{Valid: q.Valid(), Quote: q})
}

func (h *Handlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, req, ok := h.prepare(w, r)
	if !ok {
		return
	}
	order, err := session.PlaceOrder(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handlers) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	order, err := h.svc.ConfirmPayment(ctx, orderID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// prepare decodes the body, opens a session for the store and resolves the
// cart. It writes the error response itself when ok is false.
func (h *Handlers) prepare(w http.ResponseWriter, r *http.Request) (*storefront.Session, checkout.Request, bool) {
	ctx := r.Context()

	var body storefront.OrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(ctx, w, "invalid_request", fmt.Sprintf("invalid JSON body: %v", err), http.StatusBadRequest)
		return nil, checkout.Request{}, false
	}

	session, err := h.svc.Open(ctx, chi.URLParam(r, "storeID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return nil, checkout.Request{}, false
	}
	req, err := session.Prepare(body)
	if err != nil {
		writeServiceError(ctx, w, err)
		return nil, checkout.Request{}, false
	}
	return session, req, true
}

func parseItems(values []string) ([]storefront.LineRequest, error) {
	items := make([]storefront.LineRequest, 0, len(values))
	for _, v := range values {
		id, qty, found := strings.Cut(v, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("invalid item %q", v)
		}
		quantity := 1
		if found {
			n, err := strconv.Atoi(strings.TrimSpace(qty))
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid quantity in item %q", v)
			}
			quantity = n
		}
		items = append(items, storefront.LineRequest{ProductID: id, Quantity: quantity})
	}
	return items, nil
}
