package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core/notification"
)

var nowFunc = time.Now // mockable

type feedApi struct {
	svc      notification.FeedBuilder
	validate *validator.Validate
}

func registerFeedAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc notification.FeedBuilder, validate *validator.Validate) {
	api := feedApi{svc: svc, validate: validate}

	g.GET("/students/:id/feed", api.studentFeed, jwt, ownerOrAdminMiddleware(RoleStudent))
	g.GET("/parents/:id/feed", api.parentFeed, jwt, ownerOrAdminMiddleware(RoleParent))
}

func (api *feedApi) options(ctx echo.Context) (notification.Options, error) {
	var req FeedRequest
	if err := req.Bind(ctx); err != nil {
		return notification.Options{}, err
	}
	if err := req.Validate(api.validate); err != nil {
		return notification.Options{}, err
	}
	return req.Options(), nil
}

// Handlers

func (api *feedApi) studentFeed(ctx echo.Context) error {
	opts, err := api.options(ctx)
	if err != nil {
		return err
	}

	feed, err := api.svc.BuildStudentFeed(ctx.Request().Context(), ctx.Param("id"), nowFunc(), opts)
	if err != nil {
		return errors.Wrap(err, "building student feed")
	}
	return ctx.JSON(http.StatusOK, feed)
}

func (api *feedApi) parentFeed(ctx echo.Context) error {
	opts, err := api.options(ctx)
	if err != nil {
		return err
	}

	feed, err := api.svc.BuildParentFeed(ctx.Request().Context(), ctx.Param("id"), nowFunc(), opts)
	if err != nil {
		return errors.Wrap(err, "building parent feed")
	}
	return ctx.JSON(http.StatusOK, feed)
}
