package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/store"
	"facturation-backend/utils"
)

// ProfileController manages issuer profiles. Exactly one profile is flagged
// default at any time and the last profile can never be deleted.
type ProfileController struct {
	store *store.Store
	log   zerolog.Logger
}

func NewProfileController(s *store.Store, log zerolog.Logger) *ProfileController {
	return &ProfileController{store: s, log: log.With().Str("component", "profiles").Logger()}
}

func (pc *ProfileController) List(c *fiber.Ctx) error {
	return c.JSON(pc.store.Profiles())
}

// Add creates a blank profile prefilled from the defaults and returns it for
// editing.
func (pc *ProfileController) Add(c *fiber.Ctx) error {
	p, err := pc.store.AddProfile()
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (pc *ProfileController) Upsert(c *fiber.Ctx) error {
	var profile models.CompanyProfile
	if err := middlewares.BindAndValidate(c, &profile); err != nil {
		return err
	}
	utils.NormalizeDTO(&profile)
	if !models.IsValidProfile(profile) {
		return fiber.NewError(fiber.StatusBadRequest, "profile name is required")
	}
	if err := pc.store.UpsertProfile(profile); err != nil {
		return err
	}
	return c.JSON(profile)
}

func (pc *ProfileController) SetDefault(c *fiber.Ctx) error {
	if err := pc.store.SetDefaultProfile(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(pc.store.Profiles())
}

// Delete removes a profile; deleting the last one is rejected with a 409 via
// the error handler.
func (pc *ProfileController) Delete(c *fiber.Ctx) error {
	if err := pc.store.DeleteProfile(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(pc.store.Profiles())
}
