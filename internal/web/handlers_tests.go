package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/abadmin/internal/domain"
	"github.com/emiliopalmerini/abadmin/internal/service"
	"github.com/emiliopalmerini/abadmin/internal/web/middleware"
	"github.com/emiliopalmerini/abadmin/internal/web/templates"
)

func (s *Server) handleTests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	var data templates.TestsData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Page, err = s.services.Tests.List(gctx, req.principal, req.orgID(), status, page)
		return err
	})
	g.Go(func() error {
		var err error
		data.Counts, err = s.services.Tests.StatusCounts(gctx, req.principal, req.orgID())
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	s.render(w, r, templates.TestsPage(req.nav, data))
}

func (s *Server) handleNewTest(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if !req.ws.Can(domain.PermEditTests) {
		s.fail(w, r, req.nav, domain.ErrForbidden)
		return
	}
	s.render(w, r, templates.TestFormPage(req.nav, templates.TestForm{}))
}

func (s *Server) handleEditTest(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if !req.ws.Can(domain.PermEditTests) {
		s.fail(w, r, req.nav, domain.ErrForbidden)
		return
	}
	test, err := s.services.Tests.Get(r.Context(), req.principal, req.orgID(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	s.render(w, r, templates.TestFormPage(req.nav, templates.TestForm{Test: test}))
}

func testInputFromForm(r *http.Request) (service.TestInput, error) {
	in := service.TestInput{
		Name:          r.FormValue("name"),
		Hypothesis:    r.FormValue("hypothesis"),
		Description:   r.FormValue("description"),
		PrimaryMetric: r.FormValue("primary_metric"),
		Variations:    splitLines(r.FormValue("variations")),
	}
	var verr domain.ValidationError
	start, err := parseFormDate(r, "start_date")
	if err != nil {
		verr.Fields = append(verr.Fields, fieldErrors(err)...)
	}
	end, err := parseFormDate(r, "end_date")
	if err != nil {
		verr.Fields = append(verr.Fields, fieldErrors(err)...)
	}
	in.StartDate, in.EndDate = start, end
	return in, verr.OrNil()
}

func fieldErrors(err error) []domain.FieldError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return []domain.FieldError{{Field: "form", Message: err.Error()}}
}

func (s *Server) handleCreateTest(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	in, err := testInputFromForm(r)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	test, err := s.services.Tests.Create(r.Context(), req.principal, req.orgID(), in)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("tests", test.ID))
}

func (s *Server) handleUpdateTest(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	in, err := testInputFromForm(r)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	test, err := s.services.Tests.Update(r.Context(), req.principal, req.orgID(), r.PathValue("id"), in)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("tests", test.ID))
}

func (s *Server) handleTestDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	id := r.PathValue("id")

	data := templates.TestDetailData{
		AnalysisAvailable:   s.services.Analysis.Available(),
		HypothesesAvailable: s.services.Hypotheses.Available(),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Test, err = s.services.Tests.Get(gctx, req.principal, req.orgID(), id)
		return err
	})
	g.Go(func() error {
		var err error
		data.Versions, err = s.services.Versions.List(gctx, req.principal, req.orgID(), id)
		return err
	})
	g.Go(func() error {
		var err error
		data.Latest, err = s.services.Versions.Latest(gctx, req.principal, req.orgID(), id)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	s.render(w, r, templates.TestDetailPage(req.nav, data))
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	test, err := s.services.Tests.ChangeStatus(r.Context(), req.principal, req.orgID(), r.PathValue("id"), r.FormValue("status"))
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("tests", test.ID))
}

func (s *Server) handleDeleteTest(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if err := s.services.Tests.Delete(r.Context(), req.principal, req.orgID(), r.PathValue("id")); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	redirect(w, r, req.nav.OrgPath("tests"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	number, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || number < 1 {
		s.fail(w, r, req.nav, domain.ErrNotFound)
		return
	}

	var data templates.VersionData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Test, err = s.services.Tests.Get(gctx, req.principal, req.orgID(), r.PathValue("id"))
		return err
	})
	g.Go(func() error {
		var err error
		data.Version, err = s.services.Versions.Get(gctx, req.principal, req.orgID(), r.PathValue("id"), number)
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, req.nav, err)
		return
	}

	s.render(w, r, templates.VersionPage(req.nav, data))
}

// versionInputFromForm reads the parallel variation_* columns of the
// version form. Rows without a name are skipped; when every weight is blank
// traffic is split evenly.
func versionInputFromForm(r *http.Request) (service.VersionInput, error) {
	if err := r.ParseForm(); err != nil {
		return service.VersionInput{}, domain.NewValidationError("form", "could not read the form")
	}
	names := r.PostForm["variation_name"]
	descs := r.PostForm["variation_description"]
	weights := r.PostForm["variation_weight"]
	control, _ := strconv.Atoi(r.PostFormValue("control"))

	in := service.VersionInput{Notes: r.PostFormValue("notes")}
	explicit := false
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		v := service.VariationInput{Name: name, IsControl: i == control}
		if i < len(descs) {
			v.Description = descs[i]
		}
		if i < len(weights) && strings.TrimSpace(weights[i]) != "" {
			w, err := strconv.Atoi(strings.TrimSpace(weights[i]))
			if err != nil {
				return in, domain.NewValidationError("variations", "traffic weights must be whole numbers")
			}
			v.TrafficWeight = w
			explicit = true
		}
		in.Variations = append(in.Variations, v)
	}

	if !explicit {
		for i, w := range domain.EvenWeights(len(in.Variations)) {
			in.Variations[i].TrafficWeight = w
		}
	}
	return in, nil
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	req, err := s.openOrg(r, "tests")
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	in, err := versionInputFromForm(r)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	id := r.PathValue("id")
	v, err := s.services.Versions.Create(r.Context(), req.principal, req.orgID(), id, in)
	if err != nil {
		s.fail(w, r, req.nav, err)
		return
	}
	if middleware.IsHTMX(r) {
		setToast(w, toastSuccess, "Saved version "+strconv.Itoa(v.VersionNumber))
	}
	redirect(w, r, req.nav.OrgPath("tests", id))
}
