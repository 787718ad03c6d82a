package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/model"
	"contact-relay-go/internal/service"
)

const unknownClient = "unknown"

// SubmitContact handles POST /api/contact
func (h *Handlers) SubmitContact(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)

	sub, err := bindSubmission(c)
	if err != nil {
		logrus.WithError(err).Debug("Rejecting unparsable contact body")
		respondError(c, service.NewContactError(service.CodeInvalidJSON))
		return
	}

	clientKey := ClientKey(c.Request.Header)
	outcome, err := h.contact.Submit(c.Request.Context(), sub, clientKey)
	if err != nil {
		respondError(c, service.AsContactError(err))
		return
	}

	resp := ContactResponse{OK: true}
	if !h.opts.Production && outcome != nil {
		resp.Debug = outcome.Debug
	}
	c.JSON(http.StatusOK, resp)
}

// bindSubmission decodes the body as exactly one JSON value. Trailing data
// after the object is an error.
func bindSubmission(c *gin.Context) (model.Submission, error) {
	var sub model.Submission
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return sub, fmt.Errorf("failed to read body: %w", err)
	}
	if !json.Valid(body) {
		return sub, errors.New("body is not a single JSON value")
	}
	if err := binding.JSON.BindBody(body, &sub); err != nil {
		return sub, err
	}
	return sub, nil
}

// Preflight answers CORS preflight requests. The CORS middleware decides
// which origins are echoed back.
func (h *Handlers) Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ClientKey derives the rate limit key from proxy headers: the first
// X-Forwarded-For entry, then X-Real-IP, then "unknown".
func ClientKey(header http.Header) string {
	if xff := header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
		return unknownClient
	}
	if realIP := strings.TrimSpace(header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return unknownClient
}

func respondError(c *gin.Context, err *service.ContactError) {
	c.JSON(err.Status(), ContactResponse{OK: false, Error: err.Code})
}
