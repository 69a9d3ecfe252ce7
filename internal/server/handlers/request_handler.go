package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/papertrail/internal/domain/models"
	"github.com/mamadbah2/papertrail/internal/repository"
)

// Processor runs one request through the pipeline.
type Processor interface {
	Handle(ctx context.Context, req models.Request) (models.Response, error)
}

// Ledger is the read side of the store exposed over HTTP.
type Ledger interface {
	InventorySnapshot(ctx context.Context) ([]models.InventoryRecord, error)
	QueryTransactions(ctx context.Context, q repository.TransactionQuery) ([]models.TransactionRecord, error)
}

// Reporter produces financial snapshots.
type Reporter interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// ArchiveReader lists previously archived financial snapshots.
type ArchiveReader interface {
	LatestReports(ctx context.Context, limit int64) ([]models.Snapshot, error)
}

const (
	maxListLimit        = 100
	defaultArchiveLimit = 10
)

// RequestHandler exposes the order pipeline and ledger reads over HTTP.
type RequestHandler struct {
	processor Processor
	ledger    Ledger
	reporter  Reporter
	archive   ArchiveReader
	logger    *zap.Logger
}

// NewRequestHandler constructs the HTTP handler adapter.
func NewRequestHandler(processor Processor, ledger Ledger, reporter Reporter, logger *zap.Logger) *RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestHandler{processor: processor, ledger: ledger, reporter: reporter, logger: logger}
}

// WithArchive enables the archived report listing.
func (h *RequestHandler) WithArchive(reader ArchiveReader) *RequestHandler {
	h.archive = reader
	return h
}

// Submit processes a single purchase request.
func (h *RequestHandler) Submit(c *gin.Context) {
	var req models.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.processor.Handle(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("failed processing request", zap.String("customer", req.CustomerName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Inventory lists current stock for every paper type.
func (h *RequestHandler) Inventory(c *gin.Context) {
	records, err := h.ledger.InventorySnapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": records})
}

// Transactions returns a customer's recent ledger rows.
func (h *RequestHandler) Transactions(c *gin.Context) {
	query := repository.TransactionQuery{
		CustomerName: c.Query("customer"),
		PaperType:    c.Query("paper_type"),
	}
	if query.CustomerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customer is required"})
		return
	}
	limit, ok := parseLimit(c, repository.DefaultHistoryLimit)
	if !ok {
		return
	}
	query.Limit = limit

	rows, err := h.ledger.QueryTransactions(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("failed querying transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows})
}

// FinancialReport returns a fresh reporting snapshot.
func (h *RequestHandler) FinancialReport(c *gin.Context) {
	snapshot, err := h.reporter.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed building report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ArchivedReports lists the most recent archived snapshots, newest first.
func (h *RequestHandler) ArchivedReports(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report archive not configured"})
		return
	}
	limit, ok := parseLimit(c, defaultArchiveLimit)
	if !ok {
		return
	}

	reports, err := h.archive.LatestReports(c.Request.Context(), int64(limit))
	if err != nil {
		h.logger.Error("failed loading archived reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load archived reports"})
		return
	}
	if reports == nil {
		reports = []models.Snapshot{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// parseLimit reads the optional limit query parameter, bounded to
// [1, maxListLimit]. It writes a 400 response and reports false on bad input.
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > maxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
		return 0, false
	}
	return limit, true
}
