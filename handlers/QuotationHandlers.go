package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/utils"
)

// assembleDraft turns a request into a draft quotation. The sender is the caller
// unless SenderUserID names someone else.
func assembleDraft(ctx context.Context, c *gin.Context, creds *repository.CredentialStore, clock utils.Clock, req models.DraftRequest) (models.Quotation, error) {
	caller, ok := currentUser(c)
	if !ok {
		return models.Quotation{}, fmt.Errorf("%w: no authenticated user", repository.ErrInvalidCredential)
	}

	senderUser := caller
	if req.SenderUserID != "" && req.SenderUserID != caller.ID {
		u, err := creds.GetUser(ctx, req.SenderUserID)
		if err != nil {
			return models.Quotation{}, err
		}
		senderUser = u
	}

	q, err := services.DraftFromRequest(req, senderUser, clock)
	if err != nil {
		return models.Quotation{}, fmt.Errorf("%w: %v", repository.ErrValidation, err)
	}
	return q, nil
}

// DraftQuotationHandler godoc
// @Summary Assemble a draft
// @Description Compute discounts and the validity date without saving anything
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DraftRequest true "Customer, products and terms"
// @Success 200 {object} models.Quotation
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotations/draft [post]
func DraftQuotationHandler(creds *repository.CredentialStore, clock utils.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := assembleDraft(ctx, c, creds, clock, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// SaveQuotationHandler godoc
// @Summary Save a quotation
// @Description Assemble a quotation and add it to the active collection. A sender with a telephone is required.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DraftRequest true "Customer, products and terms"
// @Success 201 {object} models.QuotationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations [post]
func SaveQuotationHandler(store *repository.QuotationStore, creds *repository.CredentialStore, clock utils.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.DraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := assembleDraft(ctx, c, creds, clock, req)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := store.Save(ctx, q); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.QuotationResponse{Quotation: q})
	}
}

// GetQuotationsHandler godoc
// @Summary List quotations
// @Description Active quotations, or archived ones with archived=true. Newest first.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param archived query bool false "List the archive instead"
// @Success 200 {array} models.Quotation
// @Router /api/quotations [get]
func GetQuotationsHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		archived, _ := strconv.ParseBool(c.DefaultQuery("archived", "false"))
		if archived {
			c.JSON(http.StatusOK, store.Archived())
			return
		}
		c.JSON(http.StatusOK, store.Active())
	}
}

// GetQuotationHandler godoc
// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.QuotationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id} [get]
func GetQuotationHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, archived, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.QuotationResponse{Quotation: q, Archived: archived})
	}
}

// UpdateQuotationStatusHandler godoc
// @Summary Change status
// @Description Set draft, sent, accepted or rejected. Unknown ids are ignored.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Param request body models.StatusRequest true "New status"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotations/{id}/status [patch]
func UpdateQuotationStatusHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := store.SetStatus(ctx, c.Param("id"), req.Status); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Status updated"})
	}
}

type lifecycleAction func(ctx context.Context, id string) error

func lifecycleHandler(action lifecycleAction, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := action(ctx, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: message})
	}
}

// ArchiveQuotationHandler godoc
// @Summary Archive quotation
// @Description Move an active quotation to the archive. No-op unless it is active.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.MessageResponse
// @Router /api/quotations/{id}/archive [post]
func ArchiveQuotationHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return lifecycleHandler(store.Archive, "Quotation archived")
}

// RestoreQuotationHandler godoc
// @Summary Restore quotation
// @Description Move an archived quotation back to the active list. No-op unless it is archived.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.MessageResponse
// @Router /api/quotations/{id}/restore [post]
func RestoreQuotationHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return lifecycleHandler(store.Restore, "Quotation restored")
}

// DeleteQuotationHandler godoc
// @Summary Delete quotation
// @Description Permanently remove a quotation from either collection
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Success 200 {object} models.MessageResponse
// @Router /api/quotations/{id} [delete]
func DeleteQuotationHandler(store *repository.QuotationStore) gin.HandlerFunc {
	return lifecycleHandler(store.Delete, "Quotation deleted")
}

// QuotationMailtoHandler godoc
// @Summary Compose e-mail
// @Description Build a mailto link carrying the quotation summary. Nothing is sent.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quotation ID"
// @Param to query string false "Recipient address"
// @Success 200 {object} models.MailtoResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/mailto [get]
func QuotationMailtoHandler(store *repository.QuotationStore, mail *services.MailComposer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, _, err := store.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		uri, err := mail.ComposeQuotation(q, c.Query("to"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MailtoResponse{URI: uri})
	}
}

// ExportQuotationsHandler godoc
// @Summary Export register
// @Description Download active and archived quotations as an XLSX workbook
// @Tags Quotations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "XLSX workbook"
// @Router /api/quotations/export [get]
func ExportQuotationsHandler(store *repository.QuotationStore, exporter *services.RegisterExporter, clock utils.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := exporter.WriteQuotations(&buf, store.Active(), store.Archived()); err != nil {
			respondError(c, err)
			return
		}
		sendAttachment(c, fmt.Sprintf("quotations-%s.xlsx", clock.Now().Format("20060102")), xlsxContentType, buf.Bytes())
	}
}
