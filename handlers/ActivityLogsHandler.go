package handlers

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fabienng71/Rclx-sub001/models"
	"github.com/fabienng71/Rclx-sub001/repository"
	"github.com/fabienng71/Rclx-sub001/services"
	"github.com/fabienng71/Rclx-sub001/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetLoginJournalHandler godoc
// @Summary      Login journal
// @Description  Paged login attempts, newest first. Optional email filter (substring, case-insensitive).
// @Tags         login-journal
// @Produce      json
// @Security     BearerAuth
// @Param        page   query  int     false  "Page"
// @Param        limit  query  int     false  "Limit"
// @Param        email  query  string  false  "Email contains"
// @Param        success query bool    false  "Only successful (true) or failed (false) attempts"
// @Success      200    {object}  models.LoginJournalPage
// @Router       /api/login-journal [get]
func GetLoginJournalHandler(creds *repository.CredentialStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit < 1 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		journal, err := creds.ListLoginJournal(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		journal = filterJournal(journal, c.Query("email"), c.Query("success"))

		total := len(journal)
		totalPages := int(math.Ceil(float64(total) / float64(limit)))
		data := []models.LoginAttempt{}
		// page is bounded by totalPages before multiplying so huge values cannot overflow.
		if page <= totalPages {
			offset := (page - 1) * limit
			end := offset + limit
			if end > total {
				end = total
			}
			data = journal[offset:end]
		}

		c.JSON(http.StatusOK, models.LoginJournalPage{
			Data:       data,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		})
	}
}

func filterJournal(journal []models.LoginAttempt, email, success string) []models.LoginAttempt {
	email = strings.ToLower(strings.TrimSpace(email))
	wantSuccess, err := strconv.ParseBool(success)
	filterSuccess := err == nil
	if email == "" && !filterSuccess {
		return journal
	}
	out := make([]models.LoginAttempt, 0, len(journal))
	for _, a := range journal {
		if email != "" && !strings.Contains(strings.ToLower(a.Email), email) {
			continue
		}
		if filterSuccess && a.Success != wantSuccess {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ExportLoginJournalHandler godoc
// @Summary      Export login journal
// @Tags         login-journal
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  file  "XLSX workbook"
// @Router       /api/login-journal/export [get]
func ExportLoginJournalHandler(creds *repository.CredentialStore, exporter *services.RegisterExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetExportContext(c.Request.Context())
		defer cancel()

		journal, err := creds.ListLoginJournal(ctx)
		if err != nil {
			respondError(c, err)
			return
		}

		var buf bytes.Buffer
		if err := exporter.WriteLoginJournal(&buf, journal); err != nil {
			respondError(c, err)
			return
		}
		sendAttachment(c, fmt.Sprintf("login-journal-%s.xlsx", time.Now().Format("20060102")), xlsxContentType, buf.Bytes())
	}
}

func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
