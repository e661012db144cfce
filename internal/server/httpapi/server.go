// Package httpapi exposes the verification and transfer engine over JSON HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/ledger"
	"github.com/dkorovin/tagproof/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	verify   service.VerificationService
	transfer service.TransferService
	assets   service.AssetService
	ledger   ledger.Client
	signKey  []byte
	log      *zap.Logger
}

// New constructs a server with injected services.
func New(
	verify service.VerificationService,
	transfer service.TransferService,
	assets service.AssetService,
	lc ledger.Client,
	signKey []byte,
	log *zap.Logger,
) *Server {
	return &Server{verify: verify, transfer: transfer, assets: assets, ledger: lc, signKey: signKey, log: log}
}

// Router builds the route table. Everything except /v1/health requires a
// bearer token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/v1/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(Authenticate(s.signKey))

	api.HandleFunc("/scan", s.handleScan).Methods(http.MethodPost)
	api.HandleFunc("/taps", s.handleTap).Methods(http.MethodPost)

	api.HandleFunc("/transfers/initiate", s.handleInitiate).Methods(http.MethodPost)
	api.HandleFunc("/transfers/confirm", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/transfers/execute", s.handleExecute).Methods(http.MethodPost)
	api.HandleFunc("/transfers/{id}/authorization", s.handleAuthorization).Methods(http.MethodGet)

	api.HandleFunc("/assets", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id}", s.handleGetAsset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id}/history", s.handleHistory).Methods(http.MethodGet)

	api.HandleFunc("/users/me/assets", s.handleOwned).Methods(http.MethodGet)
	api.HandleFunc("/users/me/balance", s.handleBalance).Methods(http.MethodGet)

	return r
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body")
		return false
	}
	return true
}

// mapError translates sentinel errors into HTTP statuses. Failure paths stay
// well-formed JSON; nothing bubbles up raw.
func (s *Server) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrMalformedTag):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNotOwner), errors.Is(err, errs.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrLedgerTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, errs.ErrLedgerRejected), errors.Is(err, errs.ErrIntegrity):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "degraded", "ledger": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "ledger": summary})
}

type scanRequest struct {
	TagPayload string `json:"tag_payload"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.verify.Verify(r.Context(), req.TagPayload)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(res))
}

type tapRequest struct {
	TagTechnologies string `json:"tag_technologies"`
	NDEFMessage     string `json:"ndef_message"`
	Timestamp       int64  `json:"timestamp"`
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	var req tapRequest
	if !decode(w, r, &req) {
		return
	}
	uid, _ := UserIDFromCtx(r.Context())
	res, err := s.transfer.NotifyTagScanned(r.Context(), uid, ledger.TagScan{
		TagTechnologies: req.TagTechnologies,
		NDEFMessage:     req.NDEFMessage,
		Timestamp:       req.Timestamp,
	})
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset_id": res.AssetID, "message": res.Message})
}

type initiateRequest struct {
	AssetID string `json:"asset_id"`
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if !decode(w, r, &req) {
		return
	}
	code, err := s.transfer.InitiateTransfer(r.Context(), req.AssetID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset_id": req.AssetID, "code": code})
}

type confirmRequest struct {
	AssetID string `json:"asset_id"`
	Code    string `json:"code"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.transfer.ConfirmCode(req.AssetID, req.Code); err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_id":     req.AssetID,
		"remaining_ms": s.transfer.AuthorizationRemaining(req.AssetID).Milliseconds(),
	})
}

type executeRequest struct {
	AssetID  string `json:"asset_id"`
	ToUserID string `json:"to_user_id"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if !decode(w, r, &req) {
		return
	}
	uid, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	msg, err := s.transfer.ExecuteTransfer(r.Context(), req.AssetID, uid, req.ToUserID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset_id": req.AssetID, "message": msg})
}

func (s *Server) handleAuthorization(w http.ResponseWriter, r *http.Request) {
	assetID := mux.Vars(r)["id"]
	left := s.transfer.AuthorizationRemaining(assetID)
	writeJSON(w, http.StatusOK, map[string]any{
		"asset_id":     assetID,
		"authorized":   left > 0,
		"remaining_ms": left.Milliseconds(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req assetDTO
	if !decode(w, r, &req) {
		return
	}
	uid, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a := fromAssetDTO(req)
	msg, err := s.assets.Register(r.Context(), a, uid)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"asset_id": a.ID, "message": msg})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, err := s.assets.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(a))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.assets.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": toHistoryDTO(history)})
}

func (s *Server) handleOwned(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	assets, err := s.assets.Owned(r.Context(), uid)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromCtx(r.Context())
	balance, err := s.assets.Balance(r.Context(), uid)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": balance})
}
