package handlers

import (
	"net/http"

	"FoodBridge/server/internal/models"
)

// Stats keys mirror the original dashboard cards: restaurants see
// *Donations/Donated, NGOs see *Requests/Received; pending covers
// requested plus accepted.
func RestaurantHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleRestaurant)
	if !ok {
		return
	}

	donations, stats, err := historyService.RestaurantHistory(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"donations": donations,
		"stats": map[string]interface{}{
			"totalDonations":       stats.Total,
			"completedDonations":   stats.Completed,
			"pendingDonations":     stats.Requested + stats.Accepted,
			"availableDonations":   stats.Available,
			"expiredDonations":     stats.Expired,
			"totalQuantityDonated": stats.TotalQuantity,
		},
	})
}

func NGOHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, models.RoleNGO)
	if !ok {
		return
	}

	donations, stats, err := historyService.NGOHistory(r.Context(), sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"donations": donations,
		"stats": map[string]interface{}{
			"totalRequests":         stats.Total,
			"completedRequests":     stats.Completed,
			"pendingRequests":       stats.Requested + stats.Accepted,
			"expiredRequests":       stats.Expired,
			"totalQuantityReceived": stats.TotalQuantity,
		},
	})
}
