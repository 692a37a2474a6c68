package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ynvest-tube/internal/biddingerrors"
	"ynvest-tube/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// ParseAuctionID reads the :auction_id path parameter, replying 400 when it is not a positive integer
func ParseAuctionID(c *gin.Context, handlerName string) (int64, bool) {
	raw := c.Param("auction_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = fmt.Errorf("non-positive id %d", id)
		}
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid auction id: %w", err), "invalid auction id")
		utils.Warn(handlerName+": invalid auction id", map[string]any{"auction_id": raw})
		return 0, false
	}
	return id, true
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrUnknownAuction):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrAuctionExpired):
		return http.StatusNotFound, "auction expired"
	case errors.Is(err, biddingerrors.ErrUnknownVideo):
		return http.StatusNotFound, "video not found"
	case errors.Is(err, biddingerrors.ErrUnknownRent):
		return http.StatusNotFound, "rent not found"
	case errors.Is(err, biddingerrors.ErrUnknownUser):
		return http.StatusForbidden, "unknown user"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrInvalidVideo):
		return http.StatusBadRequest, "invalid video details"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrInsufficientFunds):
		return http.StatusBadRequest, "insufficient funds"
	case errors.Is(err, biddingerrors.ErrVideoAlreadyExists):
		return http.StatusConflict, "video already exists"
	case errors.Is(err, biddingerrors.ErrPersistenceConflict):
		return http.StatusServiceUnavailable, "concurrent update, retry later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
