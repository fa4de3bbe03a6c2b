package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"TallyBridge/api"
	"TallyBridge/api/constants"
)

type ctxKey string

const (
	OwnerKey   ctxKey = "owner_email"
	CompanyKey ctxKey = "company"
)

// RequireOwnerCompany ensures the request identifies an owner email and a
// company before the handler runs. JSON bodies are sniffed and restored so
// handlers can decode them again; form and query values are read in place.
func RequireOwnerCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.URL.Query().Get("email")
		company := r.URL.Query().Get("company")

		if strings.HasPrefix(r.Header.Get("Content-Type"), constants.ContentTypeJSON) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			var probe struct {
				Email   string `json:"email"`
				Company string `json:"company"`
			}
			if err := json.Unmarshal(body, &probe); err == nil {
				if probe.Email != "" {
					owner = probe.Email
				}
				if probe.Company != "" {
					company = probe.Company
				}
			}
		} else {
			if v := r.FormValue("email"); v != "" {
				owner = v
			}
			if v := r.FormValue("company"); v != "" {
				company = v
			}
		}

		if strings.TrimSpace(owner) == "" || strings.TrimSpace(company) == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingOwnerOrCompany)
			return
		}

		ctx := context.WithValue(r.Context(), OwnerKey, owner)
		ctx = context.WithValue(ctx, CompanyKey, company)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFromCtx returns the validated owner email, if the middleware ran.
func OwnerFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(OwnerKey).(string); ok {
		return v
	}
	return ""
}

// CompanyFromCtx returns the validated company, if the middleware ran.
func CompanyFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CompanyKey).(string); ok {
		return v
	}
	return ""
}
