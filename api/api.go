package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realty-aggregator/config"
	"realty-aggregator/dedup"
	"realty-aggregator/services"
	"realty-aggregator/store"
	"realty-aggregator/utils"
)

// Server exposes the catalog over HTTP.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	dedup  *dedup.Deduplicator
	logger *utils.Logger
	router *gin.Engine
}

func New(cfg *config.Config, st *store.Store, dd *dedup.Deduplicator, logger *utils.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		store:  st,
		dedup:  dd,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/ping", s.ping)
	s.router.GET("/search", s.search)
	s.router.GET("/listings", s.listings)
	s.router.GET("/listing/:id", s.listing)
	s.router.GET("/stats", s.stats)
	s.router.POST("/deduplicate", s.deduplicate)
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	addr := ":" + s.cfg.ServerPort
	s.logger.Info("API listening on %s", addr)
	if err := s.router.Run(addr); err != nil {
		return fmt.Errorf("api: serve: %w", err)
	}
	return nil
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) search(c *gin.Context) {
	q := store.SearchQuery{
		Text:         c.Query("q"),
		PropertyType: c.Query("property_type"),
		District:     c.Query("district"),
	}

	var err error
	if q.MinPrice, err = intParam(c, "min_price"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if q.MaxPrice, err = intParam(c, "max_price"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if q.MinArea, err = floatParam(c, "min_area"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if q.MaxArea, err = floatParam(c, "max_area"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if q.Rooms, err = intParam(c, "rooms"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	q.Limit = intParamDefault(c, "limit", 50)
	q.Offset = intParamDefault(c, "offset", 0)

	products, err := s.store.SearchProducts(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("search failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "search failed"})
		return
	}

	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (s *Server) listings(c *gin.Context) {
	limit := intParamDefault(c, "limit", 50)
	offset := intParamDefault(c, "offset", 0)

	products, err := s.store.Products(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("listings failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "listings failed"})
		return
	}

	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, toProductResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(results), "results": results})
}

func (s *Server) listing(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid listing id"})
		return
	}

	product, err := s.store.ProductByID(c.Request.Context(), uint(id))
	if err != nil {
		s.logger.Error("listing %d failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "lookup failed"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: "listing not found"})
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (s *Server) stats(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := s.store.Products(ctx, 0, 0)
	if err != nil {
		s.logger.Error("stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "stats failed"})
		return
	}
	bySource, err := s.store.CountOffersBySource(ctx)
	if err != nil {
		s.logger.Error("stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "stats failed"})
		return
	}

	report := services.NewStatsService(s.logger).Generate(products, bySource)
	c.JSON(http.StatusOK, report)
}

func (s *Server) deduplicate(c *gin.Context) {
	stats, err := s.dedup.DeduplicateAll(c.Request.Context(), s.cfg.DedupBatchSize)
	if err != nil {
		s.logger.Error("deduplication failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "deduplication failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"processed":    stats.Processed,
		"new_products": stats.NewProducts,
		"merged":       stats.Merged,
		"errors":       stats.Errors,
	})
}

func intParam(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}

func floatParam(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}

func intParamDefault(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
