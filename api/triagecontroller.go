package api

import (
	"net/http"
	"os"
	"time"

	"tendertriage/analysis"
	"tendertriage/change"
	"tendertriage/dedup"
	"tendertriage/orchestrator"
	"tendertriage/relevance"
	"tendertriage/types"

	"github.com/gin-gonic/gin"
)

// RegisterTriageRoutes registers triage service endpoints.
func RegisterTriageRoutes(r *gin.Engine) {
	g := r.Group("/api/triage")
	g.POST("/keys", handleGenerateKeys)
	g.POST("/resolve", handleResolve)
	g.POST("/classify", handleClassify)
	g.POST("/score", handleScore)
	g.POST("/gate", handleGate)
	g.POST("/process", handleProcess)
}

// NoticeRequest wraps a single incoming notice
type NoticeRequest struct {
	Notice *types.CanonicalRecord `json:"notice" binding:"required"`
}

// ClassifyRequest carries a stored version and its incoming revision
type ClassifyRequest struct {
	Existing *types.StoredRecord    `json:"existing" binding:"required"`
	Notice   *types.CanonicalRecord `json:"notice" binding:"required"`
}

// ResolveResponse reports the dedup verdict for one notice
type ResolveResponse struct {
	Keys      types.DedupKeys `json:"keys"`
	Decision  types.Decision  `json:"decision"`
	CheckedAt time.Time       `json:"checked_at"`
}

// handleGenerateKeys derives the three dedup keys without touching the store
func handleGenerateKeys(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dedup.GenerateKeys(req.Notice))
}

// handleResolve runs key resolution and the verdict state machine against the store
func handleResolve(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := initializeStore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect to notice store: " + err.Error()})
		return
	}
	defer store.Close()

	decision, err := dedup.NewDecider(store).Resolve(c.Request.Context(), req.Notice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ResolveResponse{
		Keys:      dedup.GenerateKeys(req.Notice),
		Decision:  decision,
		CheckedAt: time.Now(),
	})
}

// handleClassify diffs a revision against its stored version
func handleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classifier := change.NewClassifier(change.DefaultThresholds())
	c.JSON(http.StatusOK, classifier.Classify(*req.Existing, req.Notice))
}

// handleScore runs lexicon scoring for one notice
func handleScore(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scorer := relevance.NewScorer(relevance.DefaultLexicon())
	c.JSON(http.StatusOK, scorer.Score(req.Notice))
}

// handleGate scores a notice and returns the skip-or-proceed verdict with it
func handleGate(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scorer := relevance.NewScorer(relevance.DefaultLexicon())
	score := scorer.Score(req.Notice)
	verdict := relevance.Gate(score)

	c.JSON(http.StatusOK, gin.H{
		"score":   score,
		"verdict": verdict,
	})
}

// handleProcess runs the full triage for one notice: resolve, decide, and on
// CREATE or RECTIFY the scoring, gating, analysis and persistence stages.
func handleProcess(c *gin.Context) {
	var req NoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store, err := initializeStore()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect to notice store: " + err.Error()})
		return
	}
	defer store.Close()

	analyzer := analysis.NewDefaultAnalyzer(os.Getenv("ANALYSIS_MODEL"))
	pipeline := orchestrator.NewPipeline(store, analyzer, nil)

	result, err := pipeline.TriageOne(c.Request.Context(), req.Notice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		return
	}

	c.JSON(http.StatusOK, result)
}

// initializeStore connects the Redis notice store from environment configuration
func initializeStore() (*dedup.RedisStore, error) {
	return dedup.NewRedisStore(dedup.RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}
