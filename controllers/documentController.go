package controllers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/services"
	"facturation-backend/store"
	"facturation-backend/utils"
)

// DocumentController exposes the billing document collection: listing,
// drafting, saving, bulk deletion, PDF download and PDF import.
type DocumentController struct {
	store     *store.Store
	assistant *services.Assistant
	renderer  *services.Renderer
	log       zerolog.Logger
}

func NewDocumentController(s *store.Store, a *services.Assistant, r *services.Renderer, log zerolog.Logger) *DocumentController {
	return &DocumentController{
		store:     s,
		assistant: a,
		renderer:  r,
		log:       log.With().Str("component", "documents").Logger(),
	}
}

// List returns all documents, optionally filtered by ?q= (matches number,
// client name and subject, case-insensitive).
func (dc *DocumentController) List(c *fiber.Ctx) error {
	return c.JSON(dc.store.FindDocuments(c.Query("q")))
}

func (dc *DocumentController) Get(c *fiber.Ctx) error {
	doc, ok := dc.store.Document(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	return c.JSON(doc)
}

// NewDraft builds a fresh document of the requested ?type= from the default
// issuer profile and the next free sequence number. The draft is returned to
// the caller without being stored; it only enters the collection on save.
func (dc *DocumentController) NewDraft(c *fiber.Ctx) error {
	t := models.DocumentType(c.Query("type", string(models.TypeInvoice)))
	issuer := dc.store.DefaultProfile()
	doc := models.NewDocument(t, &issuer, dc.store.NextSequence(t))
	return c.JSON(doc)
}

// Upsert saves a document: replace in place when the id is known, prepend
// otherwise.
func (dc *DocumentController) Upsert(c *fiber.Ctx) error {
	var doc models.BillingDocument
	if err := middlewares.BindAndValidate(c, &doc); err != nil {
		return err
	}
	utils.NormalizeDTO(&doc)
	if doc.Id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "document id is required")
	}
	if !doc.Type.Valid() {
		doc.Type = models.TypeInvoice
	}
	if err := dc.store.UpsertDocument(doc); err != nil {
		return err
	}
	return c.JSON(doc)
}

type deleteDocumentsDTO struct {
	Ids []string `json:"ids" validate:"required,min=1"`
}

// Delete removes every document named in the body. Unknown ids are skipped,
// so retrying a delete is harmless.
func (dc *DocumentController) Delete(c *fiber.Ctx) error {
	var data deleteDocumentsDTO
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	if err := dc.store.DeleteDocuments(data.Ids); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "success"})
}

// DownloadPDF renders a stored document and streams it as an attachment.
func (dc *DocumentController) DownloadPDF(c *fiber.Ctx) error {
	doc, ok := dc.store.Document(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}
	pdf, err := dc.renderer.RenderDocument(doc)
	if err != nil {
		dc.log.Error().Err(err).Str("id", doc.Id).Msg("pdf render failed")
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	return c.Send(pdf)
}

// Import reads an uploaded PDF, extracts its billing data and stores the
// resulting invoice. When nothing can be extracted, no document is created.
func (dc *DocumentController) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file upload")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read upload")
	}
	defer f.Close()
	payload, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read upload")
	}

	extracted := dc.assistant.ExtractFromDocument(c.Context(), payload)
	if extracted == nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "could not extract document data")
	}

	issuer := dc.store.DefaultProfile()
	doc := extracted.ToDocument(&issuer, dc.store.NextSequence(models.TypeInvoice))
	if err := dc.store.UpsertDocument(doc); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Stats serves the dashboard summary.
func (dc *DocumentController) Stats(c *fiber.Ctx) error {
	return c.JSON(dc.store.Stats())
}
