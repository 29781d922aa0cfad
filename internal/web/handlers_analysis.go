package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

const maxUploadBytes = 20 << 20

func (s *Server) handleImportMetrics(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.fail(w, r, req.nav, domain.NewValidationError("file", "upload a CSV file of at most 20 MB"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, req.nav, domain.NewValidationError("file", "choose a CSV file to upload"))
		return
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(r.FormValue("replace"))
	res, err := s.services.Analysis.ImportRows(r.Context(), req.principal, req.orgID(), r.PathValue("id"), file, replace)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	setToast(w, toastSuccess, "Imported "+strconv.Itoa(res.Imported)+" rows")
	s.render(w, r, templates.ImportSummary(res))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	in := service.RunInput{
		Metric:  strings.TrimSpace(r.FormValue("metric")),
		Segment: strings.TrimSpace(r.FormValue("segment")),
	}
	if in.StartDate, err = parseFormDate(r, "start_date"); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if in.EndDate, err = parseFormDate(r, "end_date"); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	result, err := s.services.Analysis.Run(r.Context(), req.principal, req.orgID(), r.PathValue("id"), in)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	s.render(w, r, templates.AnalysisResults(result))
}

func (s *Server) handleHypotheses(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	count, _ := strconv.Atoi(r.FormValue("count"))
	items, err := s.services.Hypotheses.Generate(r.Context(), req.principal, req.orgID(), r.PathValue("id"), count)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	s.render(w, r, templates.Hypotheses(items))
}
