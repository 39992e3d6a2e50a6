package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/skywx/bluesky-weather-poster/internal/compose"
	"github.com/skywx/bluesky-weather-poster/internal/poster"
	"github.com/skywx/bluesky-weather-poster/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the operational HTTP handlers into the Fiber app.
// baseCfg is the composition config previews start from; query overrides are
// applied to a transient copy and never persisted.
func RegisterRoutes(app *fiber.App, service *poster.Service, baseCfg compose.Config) {
	v1 := app.Group("/api/v1")

	v1.Post("/post/run", func(c *fiber.Ctx) error {
		run, err := service.RunNow(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(run)
	})

	v1.Get("/post/preview", func(c *fiber.Ctx) error {
		var q previewQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		override := q.apply(baseCfg)
		post, err := service.Preview(c.Context(), &override)
		if err != nil {
			if errors.Is(err, compose.ErrInvalidMaxLength) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{
			"text":   post.Text,
			"length": len([]rune(post.Text)),
			"facets": len(post.Facets),
		})
	})

	v1.Get("/post/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"runs": service.History(),
		})
	})

	v1.Get("/post/last", func(c *fiber.Ctx) error {
		run, err := service.LastRun()
		if err != nil {
			if errors.Is(err, store.ErrEmpty) {
				return fiber.NewError(fiber.StatusNotFound, "no posts recorded yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read publish history")
		}
		return c.JSON(run)
	})

	v1.Get("/schedule/next", func(c *fiber.Ctx) error {
		next := service.NextRun(time.Now())
		return c.JSON(fiber.Map{
			"next": next.Format(time.RFC3339),
		})
	})
}

// previewQuery holds the optional composition overrides for a preview.
type previewQuery struct {
	Units     string `validate:"omitempty,oneof=metric imperial both"`
	Prefix    string
	Hashtags  string
	MaxLength int `validate:"gte=0"`

	hasUnits     bool
	hasPrefix    bool
	hasHashtags  bool
	hasMaxLength bool
}

func (q *previewQuery) bind(c *fiber.Ctx) error {
	if v := c.Query("units"); v != "" {
		q.Units = v
		q.hasUnits = true
	}
	if c.Request().URI().QueryArgs().Has("prefix") {
		q.Prefix = c.Query("prefix")
		q.hasPrefix = true
	}
	if c.Request().URI().QueryArgs().Has("hashtags") {
		q.Hashtags = c.Query("hashtags")
		q.hasHashtags = true
	}
	if v := c.QueryInt("max_length", -1); v >= 0 {
		q.MaxLength = v
		q.hasMaxLength = true
	}
	return validate.Struct(q)
}

func (q *previewQuery) apply(base compose.Config) compose.Config {
	cfg := base
	if q.hasUnits {
		cfg.Units = q.Units
	}
	if q.hasPrefix {
		cfg.Prefix = q.Prefix
	}
	if q.hasHashtags {
		cfg.Hashtags = q.Hashtags
	}
	if q.hasMaxLength {
		cfg.MaxLength = q.MaxLength
	}
	return cfg
}
