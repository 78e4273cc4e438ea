package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slabworks/card-pos/backend/internal/models"
	"github.com/slabworks/card-pos/backend/internal/services"
)

type SessionHandler struct {
	sessions       *services.SessionManager
	inventory      *services.InventoryService
	certPrefetcher *services.DebouncedLookup
}

func NewSessionHandler(sessions *services.SessionManager, inventory *services.InventoryService, certPrefetcher *services.DebouncedLookup) *SessionHandler {
	return &SessionHandler{
		sessions:       sessions,
		inventory:      inventory,
		certPrefetcher: certPrefetcher,
	}
}

func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req models.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind is required (purchase or trade)"})
		return
	}

	session := h.sessions.Open(req.Kind)
	c.JSON(http.StatusCreated, session.Summary())
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session.Summary())
}

func (h *SessionHandler) AbandonSession(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.sessions.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.sessions.Close(id)
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

// AddItem stages a line item. A duplicate barcode is reported with
// added=false and HTTP 200: the ledger treats it as a no-op and any
// user-facing duplicate warning is the client's job.
func (h *SessionHandler) AddItem(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var item models.LineItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line item: " + err.Error()})
		return
	}

	staged, added := session.Ledger.Add(item)
	h.sessions.UpdateStagedMetrics()

	// Warm the cert cache in the background so the next lookup for this
	// slab is instant. Debounced; rapid scans collapse to one fetch.
	if added && staged.CertNumber != "" && h.certPrefetcher != nil {
		h.certPrefetcher.Trigger(staged.CertNumber)
	}

	c.JSON(http.StatusOK, models.AddItemResponse{Added: added, Item: &staged})
}

func (h *SessionHandler) UpdateItem(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var patch models.LineItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch: " + err.Error()})
		return
	}

	if !session.Ledger.Update(c.Param("lineId"), patch) {
		c.JSON(http.StatusNotFound, gin.H{"error": "line item not found"})
		return
	}
	h.sessions.UpdateStagedMetrics()
	c.JSON(http.StatusOK, session.Summary())
}

func (h *SessionHandler) RemoveItem(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if !session.Ledger.Remove(c.Param("lineId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "line item not found"})
		return
	}
	h.sessions.UpdateStagedMetrics()
	c.JSON(http.StatusOK, session.Summary())
}

func (h *SessionHandler) ClearItems(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	session.Ledger.Clear()
	h.sessions.UpdateStagedMetrics()
	c.JSON(http.StatusOK, session.Summary())
}

// Checkout commits the session to inventory and closes it.
func (h *SessionHandler) Checkout(c *gin.Context) {
	session, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&req) // notes are optional, an empty body is fine

	record, err := h.inventory.Checkout(session, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrEmptySession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session has no staged items"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.sessions.Close(session.ID)
	c.JSON(http.StatusOK, record)
}
