package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"devlink.vn/backoffice/config"
	"devlink.vn/backoffice/models"
)

// The directory surface here is the minimum the billing core needs: the
// contract registry entities must exist before periods can be seeded.

// CreateCompanyHandler registers a client company.
func CreateCompanyHandler(w http.ResponseWriter, r *http.Request) {
	var company models.ClientCompany
	if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if company.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := config.DB.Create(&company).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(company)
}

// ListCompaniesHandler lists active client companies with their contracts.
func ListCompaniesHandler(w http.ResponseWriter, r *http.Request) {
	var companies []models.ClientCompany
	if err := config.DB.Preload("Contracts").Order("name ASC").Find(&companies).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"companies": companies})
}

type createContractReq struct {
	CompanyID    string  `json:"company_id"`
	ContractCode string  `json:"contract_code"`
	Description  string  `json:"description"`
	HourlyRate   int64   `json:"hourly_rate"`
	ActiveFrom   string  `json:"active_from"`
	ActiveTo     *string `json:"active_to"`
}

// CreateContractHandler registers a billing contract for a company.
func CreateContractHandler(w http.ResponseWriter, r *http.Request) {
	var req createContractReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		http.Error(w, "invalid company_id", http.StatusBadRequest)
		return
	}
	if req.ContractCode == "" || req.HourlyRate <= 0 {
		http.Error(w, "contract_code and positive hourly_rate are required", http.StatusBadRequest)
		return
	}
	activeFrom, err := time.Parse(dateLayout, req.ActiveFrom)
	if err != nil {
		http.Error(w, "invalid active_from, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	var activeTo *time.Time
	if req.ActiveTo != nil {
		t, err := time.Parse(dateLayout, *req.ActiveTo)
		if err != nil {
			http.Error(w, "invalid active_to, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		activeTo = &t
	}

	contract := models.Contract{
		CompanyID:    companyID,
		ContractCode: req.ContractCode,
		Description:  req.Description,
		HourlyRate:   req.HourlyRate,
		Status:       models.ContractStatusActive,
		ActiveFrom:   activeFrom,
		ActiveTo:     activeTo,
	}
	if err := config.DB.Create(&contract).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contract)
}

// TerminateContractHandler marks a contract terminated and cancels its open
// payment records through the lifecycle engine.
func TerminateContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid contract id", http.StatusBadRequest)
		return
	}

	var contract models.Contract
	if err := config.DB.First(&contract, "id = ?", contractID).Error; err != nil {
		http.Error(w, "contract not found", http.StatusNotFound)
		return
	}
	if contract.Status != models.ContractStatusTerminated {
		if err := config.DB.Model(&contract).Update("status", models.ContractStatusTerminated).Error; err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	cancelled, err := NewLifecycleEngine().CancelForTerminatedContract(contractID)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"contract":          contract,
		"records_cancelled": len(cancelled),
	})
}
