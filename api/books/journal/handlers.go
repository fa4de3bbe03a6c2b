package journal

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"TallyBridge/api"
	"TallyBridge/api/constants"
	"TallyBridge/api/utils"
)

// writeError maps the package error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		api.RespondWithError(w, http.StatusBadRequest, ve.Msg)
		return
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		api.RespondWithError(w, http.StatusNotFound, nf.Msg)
		return
	}
	if errors.Is(err, ErrStagingCollision) {
		api.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	api.RespondWithError(w, http.StatusInternalServerError, err.Error())
}

// Handler: UploadJournal ingests a pre-parsed row batch (JSON body).
func UploadJournal(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		var in IngestInput
		if !api.DecodeJSONBody(w, r, &in) {
			return
		}
		result, err := IngestRows(r.Context(), pool, in)
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        "Journal uploaded and stored temporarily",
			"table":          result.StagingID,
			"invalidLedgers": result.InvalidLedgers,
			"rowCount":       result.RowCount,
		})
	}
}

// Handler: UploadJournalFile ingests a raw spreadsheet (multipart form).
// Accepts .xlsx, .xls and .csv; the header row names the columns.
func UploadJournalFile(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileUploadFailed)
			return
		}
		defer file.Close()

		rows, err := ParseSpreadsheet(file, header.Filename)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileParsingFailed+": "+err.Error())
			return
		}
		in := IngestInput{
			Owner:       r.FormValue("email"),
			Company:     r.FormValue("company"),
			Rows:        rows,
			WithItems:   r.FormValue("withItems") == "true",
			FileName:    header.Filename,
			Mode:        r.FormValue("mode"),
			BankAccount: r.FormValue("bankAccount"),
		}
		result, err := IngestRows(r.Context(), pool, in)
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":        "File uploaded and stored temporarily",
			"table":          result.StagingID,
			"invalidLedgers": result.InvalidLedgers,
			"rowCount":       result.RowCount,
		})
	}
}

// Handler: GetJournalData returns the staged rows of one upload in order.
// Optional page/limit query parameters page through large uploads.
func GetJournalData(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stagingID := r.URL.Query().Get("tempTable")
		pagination, paged, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !paged {
			rows, err := FetchStagedRows(r.Context(), db, stagingID, 0, 0)
			if err != nil {
				writeError(w, err)
				return
			}
			api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
			return
		}

		rows, err := FetchStagedRows(r.Context(), db, stagingID, pagination.Limit, pagination.Offset)
		if err != nil {
			writeError(w, err)
			return
		}
		total, err := utils.CountTotal(db,
			`SELECT COUNT(*) FROM staged_rows WHERE upload_id = $1`, stagingID)
		if err != nil {
			writeError(w, err)
			return
		}
		pagination.SetPaginationStats(total)
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"data":       rows,
			"pagination": pagination,
		})
	}
}

// Handler: UpdateJournalRow applies a partial update and reports the fields
// that actually changed.
func UpdateJournalRow(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		var in UpdateInput
		if !api.DecodeJSONBody(w, r, &in) {
			return
		}
		if in.Owner == "" {
			in.Owner = r.URL.Query().Get("email")
		}
		if in.Company == "" {
			in.Company = r.URL.Query().Get("company")
		}
		result, err := UpdateStagedRow(r.Context(), pool, in)
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":       "Row updated successfully",
			"updatedFields": result.UpdatedFields,
		})
	}
}

// Handler: GetJournalUpdateHistory lists audit entries newest-first.
func GetJournalUpdateHistory(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		entries, err := ListAuditHistory(r.Context(), db, q.Get("email"), q.Get("company"), q.Get("tempTable"))
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
	}
}

// Handler: GetUserUploads lists the upload manifest newest-first.
func GetUserUploads(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		uploads, err := ListUploads(r.Context(), db, q.Get("email"), q.Get("company"))
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"data": uploads})
	}
}

// Handler: DeleteUserUpload drops one upload's rows and manifest entry.
func DeleteUserUpload(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
			return
		}
		var req struct {
			Table string `json:"table"`
		}
		if !api.DecodeJSONBody(w, r, &req) {
			return
		}
		if err := DeleteUpload(r.Context(), pool, req.Table); err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Upload deleted successfully",
		})
	}
}

// Handler: GetSentCount reports how many rows of an upload were already
// forwarded to Tally.
func GetSentCount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stagingID := r.URL.Query().Get("tempTable")
		count, err := CountSent(r.Context(), db, stagingID)
		if err != nil {
			writeError(w, err)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"count": count,
		})
	}
}
