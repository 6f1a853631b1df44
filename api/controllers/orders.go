package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/api/middleware"
	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/api/validators"
	"github.com/campustrade/campustrade-backend/internal/orders"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

type createOrderRequest struct {
	ProductID     string  `json:"product_id" validate:"required,uuid"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	TradeLocation *string `json:"trade_location,omitempty"`
	BuyerNote     *string `json:"buyer_note,omitempty" validate:"omitempty,max=500"`
}

// OrderCreate places an order and reserves the listing.
func OrderCreate(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID := middleware.UserIDFromContext(r.Context())
		if buyerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(body.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		detail, err := svc.Create(r.Context(), buyerID, orders.CreateInput{
			ProductID:     productID,
			PaymentMethod: body.PaymentMethod,
			TradeLocation: body.TradeLocation,
			BuyerNote:     body.BuyerNote,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// OrderCancel voids a pending order and releases the listing.
func OrderCancel(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(svc, logg, (*orders.Service).Cancel)
}

// OrderComplete settles a pending order, marks the listing sold and rewards
// both parties' credit.
func OrderComplete(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(svc, logg, (*orders.Service).Complete)
}

// OrderDetail returns one order to either trade party.
func OrderDetail(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return orderTransition(svc, logg, (*orders.Service).Get)
}

// OrderList pages the caller's trade history for one side.
func OrderList(svc *orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		side := orders.Side(strings.TrimSpace(r.URL.Query().Get("side")))
		if side == "" {
			side = orders.SideBuy
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := orders.ListFilter{Page: page}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			filter.Status = &raw
		}

		result, err := svc.ListMine(r.Context(), userID, side, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func orderTransition(
	svc *orders.Service,
	logg *logger.Logger,
	op func(*orders.Service, context.Context, uuid.UUID, uuid.UUID) (*orders.Detail, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := op(svc, r.Context(), actorID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
