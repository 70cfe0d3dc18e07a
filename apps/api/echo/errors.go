package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-notify/core"
	"github.com/trezcool/masomo-notify/core/notification"
	"github.com/trezcool/masomo-notify/core/schedule"
	"github.com/trezcool/masomo-notify/core/window"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
	errNoAcademicYear = echo.NewHTTPError(http.StatusNotFound, "no academic year covers this date")
	errUnavailable    = echo.NewHTTPError(http.StatusServiceUnavailable, "schedule temporarily unavailable")
)

// domainHTTPError maps the feed errors to their HTTP error, if any.
func domainHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, schedule.ErrEntityNotFound):
		return errHttpNotFound
	case errors.Is(err, schedule.ErrNoAcademicYear):
		return errNoAcademicYear
	case errors.Is(err, schedule.ErrSourceUnavailable):
		return errUnavailable
	case errors.Is(err, window.ErrInvalidWindow), errors.Is(err, notification.ErrInvalidLimit):
		return echo.NewHTTPError(http.StatusBadRequest, errors.Cause(err).Error())
	}
	return nil
}

// bindingFieldErrors names the query params a binder error is about, if it failed to parse a number.
func bindingFieldErrors(herr *echo.HTTPError, ctx echo.Context) map[string]string {
	var numErr *strconv.NumError
	if herr.Code != http.StatusBadRequest || !errors.As(herr.Internal, &numErr) {
		return nil
	}
	fldErrs := make(map[string]string)
	for name, values := range ctx.QueryParams() {
		for _, v := range values {
			if v == numErr.Num {
				fldErrs[name] = name + " must be an integer"
			}
		}
	}
	if len(fldErrs) == 0 {
		return nil
	}
	return fldErrs
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		origErr := errors.Cause(err)
		if herr := domainHTTPError(err); herr != nil {
			origErr = herr
		}

		switch origErr := origErr.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if fldErrs := bindingFieldErrors(origErr, ctx); fldErrs != nil {
				code = http.StatusBadRequest
				message = fldErrs
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var requester core.Requester
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				requester = claims.requester()
			}
			logger.Error(msg, errors.Wrap(err, msg), requester)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
