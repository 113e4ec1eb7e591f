package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelhub/inventory-server/internal/inventory/service"
	"github.com/modelhub/inventory-server/internal/models"
	"github.com/modelhub/inventory-server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LivenessText is served at GET /.
const LivenessText = "AI model inventory manager server is running"

// RegisterRoutes registers the model and purchase endpoints.
func RegisterRoutes(r gin.IRoutes, svc service.Service) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, LivenessText)
	})

	r.GET("/models", func(c *gin.Context) {
		list, err := svc.ListModels(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/latest-models", func(c *gin.Context) {
		list, err := svc.ListLatestModels(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/models/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		m, err := svc.GetModel(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		// absent documents are encoded as JSON null
		c.JSON(http.StatusOK, m)
	})

	r.POST("/models", func(c *gin.Context) {
		var req createModelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := svc.CreateModel(c.Request.Context(), req.model())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.PATCH("/models/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		res, err := svc.IncrementPurchased(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.PATCH("/update-model/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var f models.ModelFields
		if err := c.ShouldBindJSON(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := svc.UpdateModel(c.Request.Context(), id, f)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.DELETE("/models/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		res, err := svc.DeleteModel(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, res)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/purchased", func(c *gin.Context) {
		list, err := svc.ListPurchases(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/purchased/:id", func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		p, err := svc.GetPurchase(c.Request.Context(), id, c.Query("email"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.POST("/purchased", func(c *gin.Context) {
		var req struct {
			ModelID     string `json:"modelId"`
			PurchasedBy string `json:"purchasedBy"`
			Name        string `json:"name"`
			Framework   string `json:"framework"`
			UseCase     string `json:"useCase"`
			Image       string `json:"image"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		modelID, err := models.ParseID(req.ModelID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p := &models.Purchase{
			ModelID:     modelID,
			PurchasedBy: req.PurchasedBy,
			Name:        req.Name,
			Framework:   req.Framework,
			UseCase:     req.UseCase,
			Image:       req.Image,
		}
		res, err := svc.CreatePurchase(c.Request.Context(), p)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/models-purchased-joined", func(c *gin.Context) {
		list, err := svc.ListPurchasesWithModels(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})
}

// paramID parses the :id route parameter, answering 400 when it is malformed.
func paramID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return primitive.NilObjectID, false
	}
	return id, true
}

// fail logs a storage error and answers with a generic 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// createModelRequest carries the client-owned fields of a new model. The id
// and purchase counter are server-owned and not read at all.
type createModelRequest struct {
	models.ModelFields
	CreatedBy string          `json:"createdBy"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

func (r createModelRequest) model() *models.Model {
	m := &models.Model{CreatedBy: r.CreatedBy, CreatedAt: looseTime(r.CreatedAt)}
	r.ModelFields.Apply(m)
	return m
}

// looseTimeLayouts are tried in order for client-supplied timestamps.
var looseTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// looseTime reads a JSON string timestamp. Anything it cannot read yields the
// zero time, which the store replaces with the insert time.
func looseTime(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	for _, layout := range looseTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
