package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/catalog"
	"github.com/koiseka/bm-companion/internal/database"
	"github.com/koiseka/bm-companion/internal/deckimport"
	"github.com/koiseka/bm-companion/internal/metrics"
	"github.com/koiseka/bm-companion/internal/models"
)

// ImportHandler owns the live import sessions. Sessions are in-memory; only
// their final results are persisted, so a restart drops in-flight sessions
// but keeps finished ones fetchable.
type ImportHandler struct {
	catalogService *catalog.Service
	cartClient     cart.Client
	submitDelay    time.Duration

	mu       sync.Mutex
	sessions map[string]*deckimport.Session
}

func NewImportHandler(catalogService *catalog.Service, cartClient cart.Client, submitDelay time.Duration) *ImportHandler {
	return &ImportHandler{
		catalogService: catalogService,
		cartClient:     cartClient,
		submitDelay:    submitDelay,
		sessions:       make(map[string]*deckimport.Session),
	}
}

// CreateSession parses the deck list, matches every line against the catalog
// and returns the new session with its match groups.
func (h *ImportHandler) CreateSession(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := deckimport.ParseDeckList(req.DeckList)
	if len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deck list contains no entries"})
		return
	}

	orch := deckimport.NewOrchestrator(h.cartClient, h.submitDelay)
	session := deckimport.NewSession(c.Request.Context(), entries, h.catalogService.Records(), orch)

	h.mu.Lock()
	h.sessions[session.ID] = session
	h.mu.Unlock()

	metrics.ImportSessionsTotal.Inc()
	log.Printf("Import session %s created: %d entries", session.ID, len(entries))
	c.JSON(http.StatusOK, session.View())
}

func (h *ImportHandler) GetSession(c *gin.Context) {
	session, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// SetAllocation adjusts one candidate's quantity within a group. The applied
// quantity may be lower than requested when the group would over-allocate.
func (h *ImportHandler) SetAllocation(c *gin.Context) {
	session, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	var req models.SetAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applied, err := session.SetAllocation(req.GroupIndex, req.CandidateIndex, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied_quantity": applied,
		"session":          session.View(),
	})
}

// SubmitSession pushes every allocation into the cart. Submissions run on the
// request; the extension keeps the request open for the duration.
func (h *ImportHandler) SubmitSession(c *gin.Context) {
	session, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if !session.CanSubmit() {
		c.JSON(http.StatusConflict, gin.H{"error": "session has unallocated quantities"})
		return
	}

	result := session.Submit(c.Request.Context())
	h.persistResult(session.ID, result)
	c.JSON(http.StatusOK, result)
}

// RetrySession resubmits only the groups that failed in a previous submit.
func (h *ImportHandler) RetrySession(c *gin.Context) {
	session, ok := h.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	if session.Result() == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "session has not been submitted"})
		return
	}

	result := session.Retry(c.Request.Context())
	h.persistResult(session.ID, result)
	c.JSON(http.StatusOK, result)
}

// GetResult returns a persisted session result exactly once. The row is
// deleted on read so a reopened popup doesn't re-show a stale summary.
func (h *ImportHandler) GetResult(c *gin.Context) {
	sessionID := c.Param("id")
	db := database.GetDB()

	var record models.ImportResultRecord
	if err := db.First(&record, "session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no result for session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var result models.ImportResult
	if err := json.Unmarshal([]byte(record.Payload), &result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored result is corrupt"})
		return
	}

	if err := db.Delete(&models.ImportResultRecord{}, "session_id = ?", sessionID).Error; err != nil {
		log.Printf("Failed to delete result record for session %s: %v", sessionID, err)
	}

	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) lookup(id string) (*deckimport.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.sessions[id]
	return session, ok
}

func (h *ImportHandler) persistResult(sessionID string, result *models.ImportResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Printf("Failed to encode result for session %s: %v", sessionID, err)
		return
	}

	record := models.ImportResultRecord{
		SessionID: sessionID,
		Payload:   string(payload),
		CreatedAt: time.Now(),
	}
	if err := database.GetDB().Save(&record).Error; err != nil {
		log.Printf("Failed to persist result for session %s: %v", sessionID, err)
	}
}
