package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campustrade/campustrade-backend/api/middleware"
	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/api/validators"
	"github.com/campustrade/campustrade-backend/internal/catalog"
	"github.com/campustrade/campustrade-backend/pkg/enums"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
	"github.com/campustrade/campustrade-backend/pkg/pagination"
)

// ProductList serves the public browse grid.
func ProductList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves a single listing. The favorited flag reflects the
// viewer when the request carries credentials.
func ProductDetail(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewerID := middleware.UserIDFromContext(r.Context())
		detail, err := svc.Get(r.Context(), productID, viewerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// ProductPublish creates a listing owned by the caller.
func ProductPublish(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload publishProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toPublishInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Publish(r.Context(), sellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate edits a listing the caller owns.
func ProductUpdate(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), sellerID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductDelete removes (soft) a listing the caller owns.
func ProductDelete(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MyProducts lists the caller's own listings, sold and deleted excluded or not
// per the catalog service rules.
func MyProducts(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID := middleware.UserIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMine(r.Context(), sellerID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type publishProductRequest struct {
	Title         string   `json:"title" validate:"required,min=2,max=100"`
	Description   string   `json:"description" validate:"required,min=5,max=2000"`
	Price         string   `json:"price" validate:"required"`
	OriginalPrice *string  `json:"original_price,omitempty"`
	CategoryID    string   `json:"category_id" validate:"required,uuid"`
	Condition     string   `json:"condition" validate:"required"`
	TradeLocation *string  `json:"trade_location,omitempty"`
	Images        []string `json:"images,omitempty"`
}

func (p publishProductRequest) toPublishInput() (catalog.PublishInput, error) {
	price, err := parsePrice(p.Price, "price")
	if err != nil {
		return catalog.PublishInput{}, err
	}
	var original *decimal.Decimal
	if p.OriginalPrice != nil {
		parsed, err := parsePrice(*p.OriginalPrice, "original_price")
		if err != nil {
			return catalog.PublishInput{}, err
		}
		original = &parsed
	}
	categoryID, err := uuid.Parse(strings.TrimSpace(p.CategoryID))
	if err != nil {
		return catalog.PublishInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
	}
	condition, err := enums.ParseProductCondition(strings.TrimSpace(p.Condition))
	if err != nil {
		return catalog.PublishInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}

	return catalog.PublishInput{
		Title:         strings.TrimSpace(p.Title),
		Description:   strings.TrimSpace(p.Description),
		Price:         price,
		OriginalPrice: original,
		CategoryID:    categoryID,
		Condition:     condition,
		TradeLocation: p.TradeLocation,
		Images:        p.Images,
	}, nil
}

type updateProductRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=2,max=100"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,min=5,max=2000"`
	Price         *string  `json:"price,omitempty"`
	OriginalPrice *string  `json:"original_price,omitempty"`
	CategoryID    *string  `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Condition     *string  `json:"condition,omitempty"`
	TradeLocation *string  `json:"trade_location,omitempty"`
	Images        []string `json:"images,omitempty"`
}

func (p updateProductRequest) toUpdateInput() (catalog.UpdateInput, error) {
	var input catalog.UpdateInput
	input.Title = p.Title
	input.Description = p.Description
	input.TradeLocation = p.TradeLocation
	input.Images = p.Images

	if p.Price != nil {
		price, err := parsePrice(*p.Price, "price")
		if err != nil {
			return catalog.UpdateInput{}, err
		}
		input.Price = &price
	}
	if p.OriginalPrice != nil {
		original, err := parsePrice(*p.OriginalPrice, "original_price")
		if err != nil {
			return catalog.UpdateInput{}, err
		}
		input.OriginalPrice = &original
	}
	if p.CategoryID != nil {
		categoryID, err := uuid.Parse(strings.TrimSpace(*p.CategoryID))
		if err != nil {
			return catalog.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &categoryID
	}
	if p.Condition != nil {
		condition, err := enums.ParseProductCondition(strings.TrimSpace(*p.Condition))
		if err != nil {
			return catalog.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		input.Condition = &condition
	}
	return input, nil
}

func parsePrice(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, field+" cannot be negative")
	}
	return value, nil
}

func parseListFilter(r *http.Request) (catalog.ListFilter, error) {
	var filter catalog.ListFilter

	page, err := parsePageParams(r)
	if err != nil {
		return catalog.ListFilter{}, err
	}
	filter.Page = page

	categoryID, err := validators.ParseQueryUUID(r, "category_id")
	if err != nil {
		return catalog.ListFilter{}, err
	}
	if categoryID != uuid.Nil {
		filter.CategoryID = &categoryID
	}

	filter.Keyword = strings.TrimSpace(r.URL.Query().Get("keyword"))

	if raw := strings.TrimSpace(r.URL.Query().Get("min_price")); raw != "" {
		minPrice, err := parsePrice(raw, "min_price")
		if err != nil {
			return catalog.ListFilter{}, err
		}
		filter.MinPrice = &minPrice
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("max_price")); raw != "" {
		maxPrice, err := parsePrice(raw, "max_price")
		if err != nil {
			return catalog.ListFilter{}, err
		}
		filter.MaxPrice = &maxPrice
	}

	switch sort := strings.TrimSpace(r.URL.Query().Get("sort")); sort {
	case "", string(catalog.SortNewest):
		filter.Sort = catalog.SortNewest
	case string(catalog.SortPriceAsc), string(catalog.SortPriceDesc), string(catalog.SortPopular):
		filter.Sort = catalog.ListSort(sort)
	default:
		return catalog.ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort").
			WithDetails(map[string]any{"sort": sort})
	}

	return filter, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
	if err != nil {
		return pagination.Params{}, err
	}
	pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, PageSize: pageSize}, nil
}
