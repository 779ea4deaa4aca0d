package handler

import (
	"net/http"

	"github.com/iliyamo/raft-seat-reservation/internal/coordinator"
	"github.com/labstack/echo/v4"
)

// writeCoordErr maps a coordinator.Error's Kind to an HTTP status per
// spec.md §6/§7 and writes the JSON error body. Non-coordinator errors are
// reported as 500 Internal.
func writeCoordErr(c echo.Context, err error) error {
	ce, ok := err.(*coordinator.Error)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal", "message": err.Error()})
	}
	return c.JSON(statusForKind(ce.Kind), echo.Map{"error": ce.Kind, "message": ce.Message})
}

func statusForKind(kind string) int {
	switch kind {
	case coordinator.KindInvalidArgument, coordinator.KindSeatOutOfRange:
		return http.StatusBadRequest
	case coordinator.KindUnauthenticated:
		return http.StatusUnauthorized
	case coordinator.KindPermissionDenied:
		return http.StatusForbidden
	case coordinator.KindNotLeader:
		return http.StatusPreconditionFailed
	case coordinator.KindUnknownShow:
		return http.StatusNotFound
	case coordinator.KindSeatTaken, coordinator.KindPaymentFailed, coordinator.KindLeadershipLost:
		return http.StatusConflict
	case coordinator.KindProposalTimeout:
		return http.StatusGatewayTimeout
	case coordinator.KindPeerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
