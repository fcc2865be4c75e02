package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/grassjelly/internal/group"
	"github.com/cleared-dev/grassjelly/internal/model"
	"github.com/cleared-dev/grassjelly/internal/report"
	"github.com/cleared-dev/grassjelly/internal/tracker"
)

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type billRequest struct {
	Description string   `json:"description" validate:"required"`
	Amount      string   `json:"amount" validate:"required"`
	PaidBy      string   `json:"paid_by" validate:"required"`
	SplitAmong  []string `json:"split_among" validate:"required,min=1,dive,required"`
}

func (b billRequest) bill() (model.Bill, error) {
	amount, err := tracker.ParseAmount(b.Amount)
	if err != nil {
		return model.Bill{}, err
	}
	return model.Bill{
		Description: b.Description,
		Amount:      amount,
		PaidBy:      b.PaidBy,
		SplitAmong:  b.SplitAmong,
	}, nil
}

func (h *handler) listGroups(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"groups": names})
}

func (h *handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	name, err := h.svc.CreateGroup(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

func (h *handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), param(r, "group")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listParticipants(w http.ResponseWriter, r *http.Request) {
	var names []string
	err := h.svc.View(r.Context(), param(r, "group"), func(g *group.Group) error {
		names = g.Participants()
		return nil
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"participants": names})
}

func (h *handler) addParticipant(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	canon, added, err := h.svc.AddParticipant(r.Context(), param(r, "group"), req.Name)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"name": canon, "added": added})
}

func (h *handler) removeParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveParticipant(r.Context(), param(r, "group"), param(r, "name"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listBills(w http.ResponseWriter, r *http.Request) {
	var bills []model.Bill
	err := h.svc.View(r.Context(), param(r, "group"), func(g *group.Group) error {
		bills = g.PendingBills()
		return nil
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Bill{"bills": bills})
}

func (h *handler) stageBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	b, err := req.bill()
	if err == nil {
		err = h.svc.StageBills(r.Context(), param(r, "group"), b)
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handler) discardBill(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(param(r, "n"))
	if err != nil {
		writeError(w, r, h.log, group.ValidationError{Field: "bill", Reason: "must be a number"})
		return
	}
	if err := h.svc.DiscardBill(r.Context(), param(r, "group"), n); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) commitBills(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.CommitBills(r.Context(), param(r, "group"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"expense_ids": ids})
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	var history []model.Expense
	err := h.svc.View(r.Context(), param(r, "group"), func(g *group.Group) error {
		history = g.History()
		return nil
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Expense{"expenses": history})
}

func (h *handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	b, err := req.bill()
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	expenseID, err := h.svc.RecordExpense(r.Context(), param(r, "group"), b)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": expenseID})
}

func (h *handler) cancelExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CancelExpense(r.Context(), param(r, "group"), param(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type balancesResponse struct {
	Balances model.Balances `json:"balances"`
	Owed     []report.Debt  `json:"owed"`
}

func (h *handler) balances(w http.ResponseWriter, r *http.Request) {
	var resp balancesResponse
	err := h.svc.View(r.Context(), param(r, "group"), func(g *group.Group) error {
		resp.Balances = g.NetBalances()
		resp.Owed = h.summary(g).Owed
		return nil
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	var s report.Summary
	err := h.svc.View(r.Context(), param(r, "group"), func(g *group.Group) error {
		s = h.summary(g)
		return nil
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, s)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := report.WriteMarkdown(w, s); err != nil {
			h.log.Warn("writing report", "group", s.Group, "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		if err := report.WriteCSV(w, s); err != nil {
			h.log.Warn("writing report", "group", s.Group, "error", err)
		}
	default:
		writeError(w, r, h.log, group.ValidationError{Field: "format", Reason: "must be json, markdown or csv, got " + strconv.Quote(format)})
	}
}

func (h *handler) summary(g *group.Group) report.Summary {
	return report.Build(g, report.Options{
		Formatter: h.money,
		Location:  h.loc,
		Now:       time.Now(),
	})
}

// param returns a decoded path parameter. chi hands back the raw segment
// when the path holds escaped slashes.
func param(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
