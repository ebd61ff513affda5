package handlers

import (
	"errors"
	"log"
	"net/http"
	"storefront/internal/middleware"
	"storefront/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to status codes. Anything unrecognised is
// a 500 carrying the error text.
func respondError(c *gin.Context, err error) {
	var (
		badRequest   services.ErrBadRequest
		unauthorized services.ErrUnauthorized
		forbidden    services.ErrForbidden
		notFound     services.ErrNotFound
		conflict     services.ErrConflict
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &badRequest):
		status = http.StatusBadRequest
	case errors.As(err, &unauthorized):
		status = http.StatusUnauthorized
	case errors.As(err, &forbidden):
		status = http.StatusForbidden
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &conflict):
		status = http.StatusConflict
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	c.JSON(status, gin.H{"message": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request format: " + err.Error()})
}

// parseID reads a positive integer path parameter, writing a 400 when it is
// malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated caller, writing a 401 when there is none.
func actor(c *gin.Context) (services.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
	}
	return a, ok
}
