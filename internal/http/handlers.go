package http

import (
	"net/http"

	"gstbooks/internal/aggregate"
	"gstbooks/internal/core"
	"gstbooks/internal/gst"
	"gstbooks/internal/log"
	"gstbooks/internal/report"
	"gstbooks/internal/source"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	txs, err := s.svc.Transactions(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"transactions": txs,
		"count":        len(txs),
	}).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Writable() {
		writeError(w, r, log.OpCreate, source.ErrReadOnly)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	tx, err := req.toTransaction()
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	saved, err := s.svc.SaveTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions?from="+saved.Date.String()+"&to="+saved.Date.String()).
		Body(saved).
		Write(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	summary, err := s.svc.Stats(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// handleStatsChange formats the change between two arbitrary values.
func (s *Server) handleStatsChange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	current, err := parseDecimal(q, "current")
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	previous, err := parseDecimal(q, "previous")
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	NewJSONResponse().Body(map[string]string{
		"change": aggregate.ComputeChange(current, previous),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	top, err := parseTop(q)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	groups, err := s.svc.Categories(r.Context(), f, top)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"categories": groups}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	series, err := s.svc.Monthly(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	NewJSONResponse().Body(series).Write(w)
}

// handleGSTApply computes tax for a single amount. With inclusive=true the
// amount is treated as a GST-inclusive total and split instead.
func (s *Server) handleGSTApply(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inclusive, err := parseBool(q, "inclusive")
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}

	var errs core.ValidationErrors
	amount, err := core.ParseAmount(q.Get("amount"))
	if err != nil {
		errs = append(errs, core.ValidationError{Field: "amount", Message: "amount must be a positive decimal", Err: err})
	}
	rate, err := core.ParseRate(q.Get("rate"))
	if err != nil {
		errs = append(errs, core.ValidationError{Field: "rate", Message: "rate must be a non-negative percentage", Err: err})
	}
	if err := errs.OrNil(); err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}

	if inclusive {
		NewJSONResponse().Body(gst.ReverseGST(amount, rate)).Write(w)
		return
	}
	NewJSONResponse().Body(gst.ApplyGST(amount, rate)).Write(w)
}

func (s *Server) handleGSTSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}
	summary, err := s.svc.GSTSummary(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleGSTByRate(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}
	slabs, err := s.svc.GSTByRate(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpSummarize, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"rates": slabs}).Write(w)
}

func (s *Server) handleGSTRates(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{"rates": gst.SupportedRates()}).Write(w)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	overview, err := s.svc.Overview(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	NewJSONResponse().Body(overview).Write(w)
}

// reportRequest resolves the {kind} path value and the date window.
func reportRequest(r *http.Request) (report.Kind, report.Period, error) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", report.Period{}, err
	}
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		return "", report.Period{}, err
	}
	return kind, report.PeriodOf(f), nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, period, err := reportRequest(r)
	if err != nil {
		writeError(w, r, log.OpBuild, err)
		return
	}
	doc, err := s.svc.BuildReport(r.Context(), kind, period)
	if err != nil {
		writeError(w, r, log.OpBuild, err)
		return
	}
	NewJSONResponse().Body(doc).Write(w)
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, log.OpBuild, err)
		return
	}
	snap, err := s.svc.LatestSnapshot(r.Context(), kind)
	if err != nil {
		writeError(w, r, log.OpBuild, err)
		return
	}
	NewJSONResponse().Body(snap).Write(w)
}

func (s *Server) handleQueueReport(w http.ResponseWriter, r *http.Request) {
	kind, period, err := reportRequest(r)
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	msg, err := s.svc.QueueReport(r.Context(), kind, period)
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusAccepted).
		Header("Location", "/api/reports/"+string(kind)+"/latest").
		Body(msg).
		Write(w)
}
