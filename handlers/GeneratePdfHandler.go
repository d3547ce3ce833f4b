package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/utils"
)

// GenerateQuotationPDF godoc
// @Summary      Quotation PDF
// @Description  Render a saved quotation. Page 1 carries a QR code of the quotation id.
// @Tags         Quotations
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path  string  true  "Quotation ID"
// @Success      200  {file}  file  "PDF document"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotations/{id}/pdf [get]
func GenerateQuotationPDF(store *repository.QuotationStore, renderer *services.QuotationRenderer, clock utils.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, _, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		ctx, cancel := utils.GetExportContext(c.Request.Context())
		defer cancel()
		renderPDF(ctx, c, renderer, services.DocumentFromQuotation(q, clock.Now()), fmt.Sprintf("quotation-%s.pdf", q.Customer.CustomerCode))
	}
}

// PreviewQuotationPDF godoc
// @Summary      Preview PDF
// @Description  Render an unsaved draft. No QR code is printed because the draft has no stored reference yet.
// @Tags         Quotations
// @Accept       json
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        request  body  models.DraftRequest  true  "Customer, products and terms"
// @Success      200  {file}  file  "PDF document"
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/quotations/preview.pdf [post]
func PreviewQuotationPDF(creds *repository.CredentialStore, renderer *services.QuotationRenderer, clock utils.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetExportContext(c.Request.Context())
		defer cancel()

		q, err := assembleDraft(ctx, c, creds, clock, req)
		if err != nil {
			respondError(c, err)
			return
		}
		doc := services.DocumentFromQuotation(q, q.CreatedAt)
		doc.Reference = ""
		renderPDF(ctx, c, renderer, doc, "quotation-preview.pdf")
	}
}

func renderPDF(ctx context.Context, c *gin.Context, renderer *services.QuotationRenderer, doc services.QuotationDocument, filename string) {
	var buf bytes.Buffer
	if err := renderer.Render(ctx, &buf, doc); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			utils.ErrorResponse(c, "PDF generation timed out", http.StatusServiceUnavailable)
			return
		}
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
