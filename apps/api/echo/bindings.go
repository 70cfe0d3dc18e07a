package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-notify/core/notification"
)

// FeedRequest holds the optional query params of the feed endpoints.
type FeedRequest struct {
	WithinMinutes int    `query:"within_minutes" validate:"min=0,max=1440"`
	NextMinutes   int    `query:"next_minutes" validate:"min=0,max=1440"`
	LookbackDays  int    `query:"lookback_days" validate:"min=0,max=30"`
	Limit         int    `query:"limit" validate:"min=0,max=100"`
	AcademicYear  string `query:"academic_year" validate:"max=64"`
	Subject       string `query:"subject" validate:"max=64"`
}

// Bind reads the query params of ctx.
func (req *FeedRequest) Bind(ctx echo.Context) error {
	if err := ctx.Bind(req); err != nil {
		return err
	}
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	req.Subject = strings.TrimSpace(req.Subject)
	return nil
}

func (req FeedRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(req)
}

func (req FeedRequest) Options() notification.Options {
	return notification.Options{
		UpcomingMinutes: req.WithinMinutes,
		NextMinutes:     req.NextMinutes,
		LookbackDays:    req.LookbackDays,
		Limit:           req.Limit,
		AcademicYearID:  req.AcademicYear,
		SubjectID:       req.Subject,
	}
}
