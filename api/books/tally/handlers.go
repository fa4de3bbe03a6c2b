package tally

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api"
	"TallyBridge/api/constants"
)

// Handler: SendToTally dispatches the eligible rows of one upload to the
// external connector and marks them sent on success.
func SendToTally(pool *pgxpool.Pool, client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		var req struct {
			Company              string  `json:"company"`
			StagingID            string  `json:"tempTable"`
			SelectedTransactions []int64 `json:"selectedTransactions"`
		}
		if !api.DecodeJSONBody(w, r, &req) {
			return
		}
		if req.Company == "" || req.StagingID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing company or tempTable")
			return
		}

		result, err := DispatchToTally(r.Context(), pool, client, req.Company, req.StagingID, req.SelectedTransactions)
		if err != nil {
			if errors.Is(err, ErrNoEligibleRows) {
				api.RespondWithError(w, http.StatusNotFound, err.Error())
				return
			}
			var bve *BatchValidationError
			if errors.As(err, &bve) {
				api.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
					"success":             false,
					"error":               bve.Error(),
					"invalidTransactions": bve.Invalid,
				})
				return
			}
			var ce *ConnectorError
			if errors.As(err, &ce) {
				api.RespondWithError(w, http.StatusBadGateway, ce.Error())
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":          "Data sent to Tally successfully",
			"transactionsSent": result.Sent,
			"batch_id":         result.BatchID,
			"tallyResponse":    result.TallyResponse,
		})
	}
}

// Handler: CheckTallyConnector proxies the connector's health endpoint.
func CheckTallyConnector(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := client.Health(r.Context())
		if err != nil {
			api.RespondWithJSON(w, http.StatusBadGateway, map[string]interface{}{
				"success": false,
				"message": constants.ErrConnectorUnreachable,
				"error":   err.Error(),
			})
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Tally Connector is running",
			"data":    body,
		})
	}
}
