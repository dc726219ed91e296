package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	casehttp "github.com/squeakroad/case-service/internal/delivery/http/dto/case"
	"github.com/squeakroad/case-service/internal/delivery/http/middleware"
	"github.com/squeakroad/case-service/internal/domain"
	caseusecase "github.com/squeakroad/case-service/internal/usecase/cases"
	casedto "github.com/squeakroad/case-service/internal/usecase/dto/case"
)

type CaseHandler struct {
	log *slog.Logger
	uc  caseusecase.CaseUsecase
}

func NewCaseHandler(log *slog.Logger, uc caseusecase.CaseUsecase) *CaseHandler {
	return &CaseHandler{log: log, uc: uc}
}

func (h *CaseHandler) Routes(r chi.Router) {
	r.Post("/listings/{listingPublicID}/cases", h.createCase)
	r.Get("/cases", h.listCases)
	r.Get("/cases/{publicID}", h.getCase)
	r.Post("/cases/{publicID}/award", h.awardCase)
	r.Post("/cases/{publicID}/cancel", h.cancelCase)
}

func (h *CaseHandler) createCase(w http.ResponseWriter, r *http.Request) {
	party, _ := middleware.PartyFromContext(r.Context())

	var req casehttp.CreateCaseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, casehttp.ErrorResponse{Error: "invalid body"})
		return
	}

	out, err := h.uc.CreateCase(r.Context(), &casedto.CreateCaseInput{
		Party:           party,
		ListingPublicID: chi.URLParam(r, "listingPublicID"),
		Quantity:        req.Quantity,
		CaseDetails:     req.CaseDetails,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, casehttp.ToCaseResponse(&out.Case))
}

func (h *CaseHandler) getCase(w http.ResponseWriter, r *http.Request) {
	party, _ := middleware.PartyFromContext(r.Context())

	c, err := h.uc.GetCaseForParty(r.Context(), party, chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, casehttp.ToCaseResponse(c))
}

func (h *CaseHandler) listCases(w http.ResponseWriter, r *http.Request) {
	party, _ := middleware.PartyFromContext(r.Context())

	q := r.URL.Query()
	role := domain.PartyRole(q.Get("role"))
	if role == "" {
		role = domain.RoleBuyer
	}
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, casehttp.ErrorResponse{Error: "invalid page"})
		return
	}
	limit, err := optionalInt(q.Get("limit"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, casehttp.ErrorResponse{Error: "invalid limit"})
		return
	}

	out, err := h.uc.GetPartyCases(r.Context(), &casedto.GetPartyCasesInput{
		Party: party,
		Role:  role,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, casehttp.ToCaseListResponse(out))
}

func (h *CaseHandler) awardCase(w http.ResponseWriter, r *http.Request) {
	party, _ := middleware.PartyFromContext(r.Context())

	c, err := h.uc.AwardCase(r.Context(), party, chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, casehttp.ToCaseResponse(c))
}

func (h *CaseHandler) cancelCase(w http.ResponseWriter, r *http.Request) {
	party, _ := middleware.PartyFromContext(r.Context())

	c, err := h.uc.CancelCase(r.Context(), party, chi.URLParam(r, "publicID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, casehttp.ToCaseResponse(c))
}

func optionalInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
