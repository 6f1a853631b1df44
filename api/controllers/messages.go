package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campustrade/campustrade-backend/api/middleware"
	"github.com/campustrade/campustrade-backend/api/responses"
	"github.com/campustrade/campustrade-backend/api/validators"
	"github.com/campustrade/campustrade-backend/internal/messages"
	pkgerrors "github.com/campustrade/campustrade-backend/pkg/errors"
	"github.com/campustrade/campustrade-backend/pkg/logger"
)

type sendMessageRequest struct {
	ReceiverID string  `json:"receiver_id" validate:"required,uuid"`
	ProductID  *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
	Content    string  `json:"content" validate:"required"`
}

// MessageSend delivers a direct message to another user.
func MessageSend(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		senderID := middleware.UserIDFromContext(r.Context())
		if senderID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receiverID, err := uuid.Parse(strings.TrimSpace(body.ReceiverID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver id"))
			return
		}

		input := messages.SendInput{ReceiverID: receiverID, Content: body.Content}
		if body.ProductID != nil {
			productID, err := uuid.Parse(strings.TrimSpace(*body.ProductID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			input.ProductID = &productID
		}

		message, err := svc.Send(r.Context(), senderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// MessageConversation pages the two-way thread with another user and marks
// the fetched messages read.
func MessageConversation(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		otherID, err := validators.ParsePathUUID(chi.URLParam(r, "userId"), "user id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Conversation(r.Context(), userID, otherID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MessageUnreadCount returns how many messages await the caller.
func MessageUnreadCount(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messages service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		count, err := svc.UnreadCount(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
