package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/quarkid/vcsl-core/errs"
	"github.com/quarkid/vcsl-core/util"
)

// URL : request body for issuer url updates
type URL struct {
	Url string `json:"url"`
}

// VCSL : request body for list anchoring
type VCSL struct {
	Id   string `json:"id"`
	Ipns string `json:"ipns"`
}

// APIStatus : reported by the /status endpoint
type APIStatus struct {
	Version        string  `json:"version"`
	Time           string  `json:"time"`
	Network        string  `json:"network"`
	FundingAddress string  `json:"funding_address"`
	FeeRate        float64 `json:"fee_rate"`
}

func (app *AnchorApplication) HomeHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	fmt.Fprintf(w, "This is the VCSL anchoring API. Please consult https://quarkid.org")
}

// respondJSON makes the response with payload as json format
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if util.LogError(err) != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(response))
}

func (app *AnchorApplication) StatusHandler(w http.ResponseWriter, r *http.Request) {
	ip := util.GetClientIP(r)
	app.logger.Info(fmt.Sprintf("Status Client IP: %s", ip))
	apiStatus := APIStatus{
		Version:        "0.1.0",
		Time:           time.Now().UTC().Format("2006-01-02T15:04:05.999Z07:00"),
		Network:        app.Config.BitcoinNetwork,
		FundingAddress: app.Anchor.FundingAddress(),
		FeeRate:        app.Config.FeeRate,
	}
	respondJSON(w, http.StatusOK, apiStatus)
}

func (app *AnchorApplication) SetIssuerUrlHandler(w http.ResponseWriter, r *http.Request) {
	ip := util.GetClientIP(r)
	app.logger.Info(fmt.Sprintf("SetIssuerUrl Client IP: %s", ip))
	vars := mux.Vars(r)
	issuerID, exists := vars["issuer_id"]
	if !exists || len(issuerID) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request, issuer id required"})
		return
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	url := URL{}
	err := d.Decode(&url)
	if app.LogError(err) != nil || len(url.Url) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON body: missing url"})
		return
	}
	txid, err := app.Service.SetIssuerUrl(r.Context(), issuerID, url.Url)
	if app.LogError(err) != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "could not update issuer url"})
		return
	}
	response := map[string]interface{}{"issuer_id": issuerID, "url": url.Url}
	if len(txid) != 0 {
		response["txid"] = txid
	} else {
		response["warning"] = "url saved, anchoring deferred"
	}
	respondJSON(w, http.StatusOK, response)
}

func (app *AnchorApplication) GetIssuerUrlHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	issuerID, exists := vars["issuer_id"]
	if !exists || len(issuerID) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request, issuer id required"})
		return
	}
	record, err := app.Service.GetIssuerUrl(issuerID)
	if errs.Is(err, errs.NotFound) {
		respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "issuer not found"})
		return
	}
	if app.LogError(err) != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "could not query for issuer url"})
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (app *AnchorApplication) AddVcslHandler(w http.ResponseWriter, r *http.Request) {
	ip := util.GetClientIP(r)
	app.logger.Info(fmt.Sprintf("AddVcsl Client IP: %s", ip))
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	vcslReq := VCSL{}
	err := d.Decode(&vcslReq)
	if app.LogError(err) != nil || len(vcslReq.Id) == 0 || len(vcslReq.Ipns) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid JSON body: missing id or ipns"})
		return
	}
	txid, err := app.Service.AddVcsl(r.Context(), vcslReq.Id, vcslReq.Ipns)
	if errs.Is(err, errs.ReconciliationRequired) {
		app.LogError(err)
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "anchored but not saved, manual reconciliation required",
			"txid":  errs.TxIDOf(err),
		})
		return
	}
	if app.LogError(err) != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "could not anchor list"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"id": vcslReq.Id, "ipns": vcslReq.Ipns, "txid": txid})
}

func (app *AnchorApplication) GetVcslHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, exists := vars["id"]
	if !exists || len(id) == 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request, list id required"})
		return
	}
	record, err := app.Service.GetVcsl(id)
	if errs.Is(err, errs.NotFound) {
		respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "list not found"})
		return
	}
	if app.LogError(err) != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "could not query for list"})
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// LogError : log an error and return it unchanged
func (app *AnchorApplication) LogError(err error) error {
	if err != nil {
		app.logger.Error(fmt.Sprintf("Error in %s: %s", util.GetCurrentFuncName(2), err.Error()))
	}
	return err
}
