package recording

import (
	"errors"

	"backend-runaway/internal/polyline"
	"backend-runaway/internal/route"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	ActivityType string `json:"activity_type"`
	Name         string `json:"name"`
}

func RegisterRoutes(r fiber.Router, rec *Recorder, store *ActivityStore) {
	r.Post("/start", func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		session, err := rec.Start(req.ActivityType, req.Name)
		if err != nil {
			return commandError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	r.Post("/pause", func(c *fiber.Ctx) error {
		if err := rec.Pause(); err != nil {
			return commandError(err)
		}
		return c.JSON(rec.Snapshot())
	})

	r.Post("/resume", func(c *fiber.Ctx) error {
		if err := rec.Resume(); err != nil {
			return commandError(err)
		}
		return c.JSON(rec.Snapshot())
	})

	r.Post("/stop", func(c *fiber.Ctx) error {
		if err := rec.Stop(); err != nil {
			return commandError(err)
		}
		return c.JSON(rec.Snapshot())
	})

	r.Post("/save", func(c *fiber.Ctx) error {
		activity, err := rec.Save(c.Context())
		if err != nil {
			return commandError(err)
		}
		return c.JSON(activity)
	})

	r.Post("/discard", func(c *fiber.Ctx) error {
		if err := rec.Discard(); err != nil {
			return commandError(err)
		}
		return c.JSON(fiber.Map{"state": rec.State()})
	})

	// Devices push batches of fixes here, in timestamp order.
	r.Post("/locations", func(c *fiber.Ctx) error {
		var samples []route.Sample
		if err := c.BodyParser(&samples); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		accepted := 0
		for _, s := range samples {
			if rec.Ingest(s) {
				accepted++
			}
		}
		return c.JSON(fiber.Map{"accepted": accepted, "snapshot": rec.Snapshot()})
	})

	// The voice-assistant surface: commands arrive by name only.
	r.Post("/command/:name", func(c *fiber.Ctx) error {
		if err := rec.Dispatch(c.Params("name")); err != nil {
			return commandError(err)
		}
		return c.JSON(rec.Snapshot())
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(rec.Snapshot())
	})

	r.Get("/route", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"polyline": rec.RoutePolyline()})
	})

	r.Get("/activities/:id", func(c *fiber.Ctx) error {
		activity, err := store.GetActivity(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		coords := polyline.Decode(activity.Route)
		if len(coords) < 2 {
			coords = nil
		}
		return c.JSON(fiber.Map{"activity": activity, "coords": coords})
	})

	r.Get("/activities", func(c *fiber.Ctx) error {
		activities, err := store.ListActivities(c.Context(), c.QueryInt("limit"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(activities)
	})
}

// commandError maps engine precondition failures onto HTTP statuses:
// invalid transitions are conflicts, everything else is a server error.
func commandError(err error) error {
	switch {
	case errors.Is(err, ErrSessionActive),
		errors.Is(err, ErrNoActiveSession),
		errors.Is(err, ErrAlreadyPaused),
		errors.Is(err, ErrNotPaused),
		errors.Is(err, ErrNotStopped):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownCommand):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProviderUnavailable):
		return fiber.NewError(fiber.StatusPreconditionFailed, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
