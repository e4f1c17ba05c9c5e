package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"stream-sync/dto"
	"stream-sync/pipeline"
	"stream-sync/service"
)

type ServiceDependencies struct {
	SyncService   service.SyncService
	ImportService service.ImportService
}

// StatusEventHandler applies one queue-delivered status event. Same contract
// as the webhook endpoint; only the transport differs.
func StatusEventHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var event dto.StatusEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal status event")
		return err
	}

	return deps.SyncService.Ingest(ctx, event)
}

// Register mounts the HTTP surface onto the gin engine.
func Register(r *gin.Engine, deps ServiceDependencies) {
	r.POST("/webhook", webhook(deps))
	r.GET("/status/:assetId", status(deps))
	r.GET("/stream", stream(deps))
	r.GET("/streams", streams(deps))
	r.POST("/import", importAsset(deps))
	r.POST("/reconcile", reconcile(deps))
}

func webhook(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event dto.StatusEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed webhook body"})
			return
		}

		if err := deps.SyncService.Ingest(c.Request.Context(), event); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func status(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		asset, err := deps.SyncService.Poll(c.Request.Context(), c.Param("assetId"))
		if err != nil {
			writeError(c, err)
			return
		}

		// The upstream document is returned as received so callers are not
		// limited to the fields this service models.
		c.Data(http.StatusOK, "application/json", asset.Raw)
	}
}

func stream(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := deps.SyncService.Resolve(c.Request.Context(), c.Query("cid"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func streams(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.SyncService.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"streams": list})
	}
}

func importAsset(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed import request"})
			return
		}

		resp, err := deps.ImportService.Import(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func reconcile(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ReconcileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed reconcile request"})
			return
		}

		resp, err := deps.SyncService.Reconcile(c.Request.Context(), req.Limit)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func writeError(c *gin.Context, err error) {
	var upstream *pipeline.UpstreamError
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "upstreamStatus": upstream.Code})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
