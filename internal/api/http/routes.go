package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/present"
	"github.com/i474232898/weather-dashboard/internal/search"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, suggestions *search.Debouncer) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(dashboardOf(service))
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		_, err := service.Refresh(c.UserContext())
		return respond(c, service, err)
	})

	v1.Put("/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		_, err := service.SelectLocation(c.UserContext(), req.toCoordinates())
		return respond(c, service, err)
	})

	v1.Post("/location/device", func(c *fiber.Ctx) error {
		_, err := service.UseDeviceLocation(c.UserContext())
		return respond(c, service, err)
	})

	v1.Put("/units", func(c *fiber.Ctx) error {
		var req unitsRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		_, err := service.SetUnits(c.UserContext(), weather.Units(req.Units))
		return respond(c, service, err)
	})

	v1.Get("/search", func(c *fiber.Ctx) error {
		req := searchQuery{
			Q:     strings.TrimSpace(c.Query("q")),
			Limit: c.QueryInt("limit", 10),
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		places, err := service.Search(c.UserContext(), req.Q, req.Limit)
		if err != nil {
			if errors.Is(err, weather.ErrQueryTooShort) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(statusForKind(weather.KindOf(err)), err.Error())
		}
		if places == nil {
			places = []weather.Place{}
		}

		return c.JSON(fiber.Map{
			"query":  req.Q,
			"places": places,
		})
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		place, _, err := service.SearchAndSelect(c.UserContext(), req.Q)
		if err != nil {
			return respond(c, service, err)
		}

		body := dashboardOf(service)
		body.Place = &place
		return c.JSON(body)
	})

	v1.Post("/search/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		suggestions.Input(req.Q)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"query": strings.TrimSpace(req.Q)})
	})

	v1.Get("/search/suggestions", func(c *fiber.Ctx) error {
		r := suggestions.Latest()
		resp := suggestionsResponse{Query: r.Query, Places: r.Places}
		if r.Err != nil {
			resp.Error = weather.AdvisoryFor(r.Err)
		}
		return c.JSON(resp)
	})
}

// dashboardResponse carries the raw state and the rendered cards.
type dashboardResponse struct {
	State     weather.State     `json:"state"`
	Dashboard present.Dashboard `json:"dashboard"`
	Place     *weather.Place    `json:"place,omitempty"`
}

func dashboardOf(service *weather.Service) dashboardResponse {
	st := service.State()
	return dashboardResponse{State: st, Dashboard: present.Build(st)}
}

type suggestionsResponse struct {
	Query  string          `json:"query"`
	Places []weather.Place `json:"places"`
	Error  string          `json:"error,omitempty"`
}

// respond maps the outcome of a state-changing call to a response. Refresh
// failures still carry the dashboard so the advisory can be shown.
func respond(c *fiber.Ctx, service *weather.Service, err error) error {
	switch {
	case err == nil, errors.Is(err, weather.ErrSuperseded):
		return c.JSON(dashboardOf(service))
	case errors.Is(err, weather.ErrInvalidUnits), errors.Is(err, weather.ErrQueryTooShort):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrNoLocation):
		return fiber.NewError(fiber.StatusConflict, "no location selected")
	case errors.Is(err, location.ErrDenied):
		return c.Status(fiber.StatusForbidden).JSON(dashboardOf(service))
	case errors.Is(err, location.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dashboardOf(service))
	}
	return c.Status(statusForKind(weather.KindOf(err))).JSON(dashboardOf(service))
}

func statusForKind(kind weather.ErrorKind) int {
	switch kind {
	case weather.KindAPIKey, weather.KindHTTP:
		return fiber.StatusBadGateway
	case weather.KindRateLimit:
		return fiber.StatusTooManyRequests
	case weather.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusServiceUnavailable
	}
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// locationRequest uses pointers so that 0 is a valid coordinate.
type locationRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (l locationRequest) toCoordinates() weather.Coordinates {
	return weather.Coordinates{Lat: *l.Lat, Lon: *l.Lon}
}

type unitsRequest struct {
	Units string `json:"units" validate:"required,oneof=metric imperial"`
}

type searchQuery struct {
	Q     string `validate:"required,min=2"`
	Limit int    `validate:"min=1,max=10"`
}

type searchRequest struct {
	Q string `json:"q" validate:"required,min=2"`
}

type inputRequest struct {
	Q string `json:"q"`
}
