package controller

import (
	"slices"

	"go.uber.org/mock/gomock"

	"ncmr/internal/ncmr/models"
)

func (s *ControllerSuite) TestQuery() {
	s.seed()

	s.Run("empty search with status all returns the whole collection in order", func() {
		got := s.ctrl.QueryAll(models.Filter{Status: models.StatusFilterAll})
		s.Equal(s.ctrl.Records(), got)
	})

	s.Run("is idempotent", func() {
		f := models.Filter{Search: "g", Status: models.StatusFilterAll}
		first := s.ctrl.QueryAll(f)
		second := s.ctrl.QueryAll(f)
		s.Equal(first, second)
		s.Len(first, 1)
		s.Len(s.ctrl.Records(), 2)
	})

	s.Run("filters by status", func() {
		got := s.ctrl.QueryAll(models.Filter{Status: models.StatusFilter(models.StatusInProgress)})
		s.Require().Len(got, 1)
		s.Equal("1", got[0].ID)
	})

	s.Run("stops when the consumer stops", func() {
		var seen []string
		for r := range s.ctrl.Query(models.Filter{}) {
			seen = append(seen, r.ID)
			break
		}
		s.Equal([]string{"2"}, seen)
	})

	s.Run("restarting reflects the current collection", func() {
		seq := s.ctrl.Query(models.Filter{Status: models.StatusFilter(models.StatusClosed)})
		s.Empty(slices.Collect(seq))

		s.backend.EXPECT().UpdateStatus(gomock.Any(), "2", models.StatusClosed).Return(nil)
		s.Require().NoError(s.ctrl.UpdateStatus(s.ctx, "2", models.StatusClosed))

		got := slices.Collect(seq)
		s.Require().Len(got, 1)
		s.Equal("2", got[0].ID)
	})
}

func (s *ControllerSuite) TestSummary() {
	s.Equal(models.Summary{}, s.ctrl.Summary())

	s.seed()
	summary := s.ctrl.Summary()
	s.Equal(2, summary.Total)
	s.Equal(1, summary.Open)
	s.Equal(1, summary.InProgress)
	s.Equal(0, summary.Closed)
	s.Equal(summary.Total, summary.Open+summary.InProgress+summary.Closed)
}
