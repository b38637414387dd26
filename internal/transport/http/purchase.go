package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/goldaccess/ga-core/internal/app"
	"github.com/goldaccess/ga-core/internal/domain"
)

// ProductPurchaser is the minimal interface needed to buy a product.
type ProductPurchaser interface {
	Purchase(ctx context.Context, in app.PurchaseInput) (domain.Product, error)
}

// HandlePurchase returns the handler for POST /api/ga/cards/{card_number}/purchase.
func HandlePurchase(svc ProductPurchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req purchaseRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		product, err := svc.Purchase(r.Context(), app.PurchaseInput{
			CardNumber: chi.URLParam(r, "card_number"),
			Kind:       domain.ProductKind(req.ProductType),
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, purchaseResponse{
			Message: "Purchase successful",
			Product: newProductPayload(product),
		})
	}
}

type purchaseRequest struct {
	ProductType string `json:"product_type"`
}

type productPayload struct {
	ProductID      string    `json:"product_id"`
	CardNumber     string    `json:"card_number"`
	ProductType    string    `json:"product_type"`
	RidesRemaining int       `json:"rides_remaining"`
	Status         string    `json:"status"`
	PurchaseDate   time.Time `json:"purchase_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
}

func newProductPayload(p domain.Product) productPayload {
	return productPayload{
		ProductID:      p.ID,
		CardNumber:     p.CardNumber,
		ProductType:    p.Type,
		RidesRemaining: p.RidesRemaining,
		Status:         string(p.Status),
		PurchaseDate:   p.PurchaseDate,
		ExpiryDate:     p.ExpiryDate,
	}
}

type purchaseResponse struct {
	Message string         `json:"message"`
	Product productPayload `json:"product"`
}
