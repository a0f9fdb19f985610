package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/store"
	"facturation-backend/utils"
)

// ClientController manages the client directory. Documents embed client
// snapshots, so edits here never rewrite existing documents.
type ClientController struct {
	store *store.Store
	log   zerolog.Logger
}

func NewClientController(s *store.Store, log zerolog.Logger) *ClientController {
	return &ClientController{store: s, log: log.With().Str("component", "clients").Logger()}
}

func (cc *ClientController) List(c *fiber.Ctx) error {
	return c.JSON(cc.store.Clients())
}

func (cc *ClientController) Upsert(c *fiber.Ctx) error {
	var client models.ClientInfo
	if err := middlewares.BindAndValidate(c, &client); err != nil {
		return err
	}
	utils.NormalizeDTO(&client)
	if client.Id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "client id is required")
	}
	if client.Kind != models.ClientBusiness {
		client.Kind = models.ClientIndividual
	}
	if err := cc.store.UpsertClient(client); err != nil {
		return err
	}
	return c.JSON(client)
}

func (cc *ClientController) Delete(c *fiber.Ctx) error {
	if err := cc.store.DeleteClient(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}
