package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"devlink.vn/backoffice/models"
)

// ListPeriodsHandler returns periods, filterable by company_id and status
// query parameters.
func ListPeriodsHandler(w http.ResponseWriter, r *http.Request) {
	var companyID *uuid.UUID
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid company_id", http.StatusBadRequest)
			return
		}
		companyID = &id
	}
	status := models.PeriodStatus(r.URL.Query().Get("status"))

	periods, err := NewPeriodService().ListPeriods(companyID, status)
	if err != nil {
		http.Error(w, "failed to fetch periods: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"periods": periods})
}

// GetPeriodHandler returns one period with its records and per-record progress.
func GetPeriodHandler(w http.ResponseWriter, r *http.Request) {
	periodID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid period id", http.StatusBadRequest)
		return
	}

	period, err := NewPeriodService().GetPeriod(periodID)
	if err != nil {
		http.Error(w, "period not found", http.StatusNotFound)
		return
	}

	records := make([]map[string]interface{}, 0, len(period.Records))
	for i := range period.Records {
		rec := &period.Records[i]
		records = append(records, map[string]interface{}{
			"record":   rec,
			"progress": rec.Progress(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"period":   period,
		"progress": period.Progress(),
		"records":  records,
	})
}

type seedPeriodReq struct {
	CompanyID string `json:"company_id"`
	Month     int    `json:"month"`
	Year      int    `json:"year"`
}

// SeedPeriodHandler creates (idempotently) the period for a company-month
// and opens payment records for its active contracts.
func SeedPeriodHandler(w http.ResponseWriter, r *http.Request) {
	var req seedPeriodReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		http.Error(w, "invalid company_id", http.StatusBadRequest)
		return
	}

	period, created, err := NewPeriodService().SeedPeriod(companyID, req.Month, req.Year)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"period":          period,
		"records_created": len(created),
		"records":         created,
	})
}

// RunSweepHandler triggers the overdue sweep on demand. Admin only.
func RunSweepHandler(w http.ResponseWriter, r *http.Request) {
	flipped, err := NewOverdueSweep().RunOnce(time.Now())
	if err != nil {
		http.Error(w, "sweep failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"records_flagged": flipped})
}

// CancelContractRecordsHandler cancels the open records of a contract
// already marked terminated, for the case where the termination was recorded
// directly in the registry without going through TerminateContractHandler.
func CancelContractRecordsHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contract id", http.StatusBadRequest)
		return
	}

	cancelled, err := NewLifecycleEngine().CancelForTerminatedContract(contractID)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"records_cancelled": len(cancelled),
		"records":           cancelled,
	})
}

// parseIntQuery reads an integer query parameter with a default.
func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
