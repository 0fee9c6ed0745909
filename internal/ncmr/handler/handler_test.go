package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"ncmr/internal/ncmr/controller"
	"ncmr/internal/ncmr/controller/mocks"
	"ncmr/internal/ncmr/local"
	"ncmr/internal/ncmr/models"
	"ncmr/internal/ncmr/store/memory"
	"ncmr/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	backend *mocks.MockRecordService
	ctrl    *controller.Controller
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	mc := gomock.NewController(s.T())
	s.backend = mocks.NewMockRecordService(mc)
	ctrl, err := controller.New(s.backend, controller.WithIDGenerator(func() string { return "gen-1" }))
	s.Require().NoError(err)
	s.ctrl = ctrl
	s.router = newRouter(ctrl)
}

func newRouter(ctrl *controller.Controller) http.Handler {
	r := chi.NewRouter()
	New(ctrl, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func sampleRecords() []models.Record {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return []models.Record{
		{ID: "3", NCMRNumber: "NCMR-00003", PartNumber: "BR-1", PartName: "Bracket", Quantity: 4, Supplier: "Acme",
			DefectDescription: "crack", Severity: models.SeverityMajor, Status: models.StatusOpen, CreatedAt: created},
		{ID: "2", NCMRNumber: "NCMR-00002", PartNumber: "SH-10", PartName: "Shaft", Quantity: 3, Supplier: "Globex",
			DefectDescription: "bent", Severity: models.SeverityMinor, Status: models.StatusClosed, CreatedAt: created},
		{ID: "1", NCMRNumber: "NCMR-00001", PartNumber: "GR-7", PartName: "Gear", Quantity: 12, Supplier: "Acme",
			DefectDescription: "chipped", Severity: models.SeverityMinor, Status: models.StatusInProgress, CreatedAt: created},
	}
}

func (s *HandlerSuite) load() {
	s.backend.EXPECT().List(gomock.Any()).Return(sampleRecords(), nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/ncmrs/reload"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestReload() {
	s.Run("returns the loaded collection", func() {
		s.backend.EXPECT().List(gomock.Any()).Return(sampleRecords(), nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/ncmrs/reload"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Equal(3, resp.Total)
		s.Equal("3", resp.Data[0].ID)
	})

	s.Run("backend failure is a 502 with the load error in state", func() {
		s.backend.EXPECT().List(gomock.Any()).Return(nil, errors.New("list: HTTP 503: maintenance"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/ncmrs/reload"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, "unavailable")

		state := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs/state"))
		resp := testutil.UnmarshalResponse[StateResponse](s.T(), state)
		s.Contains(resp.LoadError, "maintenance")
		s.False(resp.CanDelete)
	})
}

func (s *HandlerSuite) TestList() {
	s.load()

	s.Run("search and status filter", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs?search=acme&status=open"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Require().Len(resp.Data, 1)
		s.Equal("3", resp.Data[0].ID)
	})

	s.Run("no filter keeps order", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs"))
		resp := testutil.UnmarshalResponse[ListResponse](s.T(), rr)
		s.Require().Len(resp.Data, 3)
		s.Equal([]string{"3", "2", "1"}, []string{resp.Data[0].ID, resp.Data[1].ID, resp.Data[2].ID})
	})

	s.Run("invalid status filter", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs?status=pending"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestSummary() {
	s.load()
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs/summary"))
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[models.Summary](s.T(), rr)
	s.Equal(models.Summary{Total: 3, Open: 1, InProgress: 1, Closed: 1}, *resp)
}

func (s *HandlerSuite) TestCreate() {
	body := map[string]any{
		"partNumber":        "BR-200",
		"partName":          "Bracket",
		"quantity":          "5",
		"lotNumber":         "L-9",
		"defectDescription": "Crack",
		"dispositionAction": "Scrap",
	}

	s.Run("synthesizes a record when the backend returns nothing", func() {
		s.backend.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, d models.Draft) (*models.Record, error) {
				s.Equal(5, d.Quantity)
				s.Equal(models.SeverityMinor, d.Severity)
				return nil, nil
			})
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ncmrs", body))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		rec := testutil.UnmarshalResponse[models.Record](s.T(), rr)
		s.Equal("gen-1", rec.ID)
		s.Equal(models.StatusOpen, rec.Status)
		s.Equal(5, rec.Quantity)
		s.Equal("NCMR-00001", rec.NCMRNumber)
	})

	s.Run("missing part name is a validation error", func() {
		invalid := map[string]any{"partNumber": "X", "quantity": 1, "defectDescription": "d"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ncmrs", invalid))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("zero quantity", func() {
		invalid := map[string]any{"partNumber": "X", "partName": "Y", "quantity": 0, "defectDescription": "d"}
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ncmrs", invalid))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed body", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/ncmrs", "{"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("backend failure", func() {
		s.backend.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("create: HTTP 500"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/ncmrs", body))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadGateway, "unavailable")
		s.Contains(s.ctrl.State().SubmitError, "create: HTTP 500")
	})
}

func (s *HandlerSuite) TestGet() {
	s.load()

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs/2"))
	testutil.AssertStatusOK(s.T(), rr)
	s.Equal("SH-10", testutil.UnmarshalResponse[models.Record](s.T(), rr).PartNumber)
	selected, ok := s.ctrl.Selected()
	s.True(ok)
	s.Equal("2", selected.ID)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ncmrs/99"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestUpdateStatus() {
	s.load()

	s.Run("success", func() {
		s.backend.EXPECT().UpdateStatus(gomock.Any(), "3", models.StatusInProgress).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/ncmrs/3/status",
			StatusRequest{Status: "in_progress"}))
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(models.StatusInProgress, testutil.UnmarshalResponse[models.Record](s.T(), rr).Status)
	})

	s.Run("failure rolls back", func() {
		before := s.ctrl.Records()
		s.backend.EXPECT().UpdateStatus(gomock.Any(), "1", models.StatusClosed).Return(errors.New("update status: HTTP 500"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/ncmrs/1/status",
			StatusRequest{Status: "closed"}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadGateway)
		s.Equal(before, s.ctrl.Records())
		s.Contains(s.ctrl.State().StatusError, "HTTP 500")
	})

	s.Run("invalid status", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/ncmrs/1/status",
			StatusRequest{Status: "archived"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown record", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/ncmrs/42/status",
			StatusRequest{Status: "closed"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestDeleteUnsupportedForRemote() {
	s.load()
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, "/ncmrs/1"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusMethodNotAllowed, "unsupported")
	s.Equal(http.MethodGet, rr.Header().Get("Allow"))
	s.Len(s.ctrl.Records(), 3)
}

func TestLocalModeRoundTrip(t *testing.T) {
	svc, err := local.New(memory.New())
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := controller.New(svc)
	if err != nil {
		t.Fatal(err)
	}
	router := newRouter(ctrl)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/ncmrs/reload"))
	testutil.AssertStatusOK(t, rr)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/ncmrs", map[string]any{
		"partNumber": "P-1", "partName": "Pin", "quantity": 2, "defectDescription": "bent", "severity": "critical",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := testutil.UnmarshalResponse[models.Record](t, rr)

	state := testutil.UnmarshalResponse[StateResponse](t,
		testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ncmrs/state")))
	if !state.CanDelete {
		t.Fatalf("expected delete to be available in local mode")
	}

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/ncmrs/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/ncmrs/reload"))
	resp := testutil.UnmarshalResponse[ListResponse](t, rr)
	if resp.Total != 0 {
		t.Fatalf("expected empty collection after delete, got %d", resp.Total)
	}
}
