// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"github.com/alvinbaena/pwd-advisor/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"net/http"
)

type checkerApi struct {
	store store.Store
}

func (q *checkerApi) checkPassword(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object with a password field"})
		return
	}
	if req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	q.lookup(c, store.HashPassword(req.Password))
}

func (q *checkerApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := store.NormalizeHash(req.Hash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q.lookup(c, hash)
}

func (q *checkerApi) lookup(c *gin.Context, hash string) {
	entry, err := q.store.Lookup(c.Request.Context(), hash)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrInvalidHash) {
			status = http.StatusBadRequest
		}
		log.Error().Err(err).Msg("error querying the breach store")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, checkResponse{Leaked: entry.Leaked, Count: entry.Count})
}

func (q *checkerApi) health(c *gin.Context) {
	n, err := q.store.Len(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("breach store is not available")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, healthResponse{Status: "ok", LeakedCount: &n})
}

// RegisterCheckerApi adds the breach lookup and health endpoints to the group.
func RegisterCheckerApi(group gin.IRoutes, s store.Store) {
	q := &checkerApi{store: s}

	group.POST("/check", q.checkPassword)
	group.POST("/check/hash", q.checkHash)
	group.GET("/health", q.health)
}
