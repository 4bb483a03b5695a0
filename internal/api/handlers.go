package api

import (
	"net/http"
	"strconv"

	"smc-signal-engine/internal/confluence"
	"smc-signal-engine/internal/database"
	"smc-signal-engine/internal/risk"
	"smc-signal-engine/internal/signal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// evaluateRequest carries a candidate signal plus an optional strategy
// config override. A missing config means the server default. Signal is a
// pointer so `required` rejects a body without one; on a struct field the
// validator would descend into it instead.
type evaluateRequest struct {
	Signal *signal.CandidateSignal `json:"signal" binding:"required"`
	Config *signal.StrategyConfig  `json:"config,omitempty"`
}

// sizeRequest asks for a position size. A zero balance means "use the
// tracked broker balance"; a zero risk percentage means the configured one.
type sizeRequest struct {
	Signal         *signal.CandidateSignal `json:"signal" binding:"required"`
	AccountBalance float64                 `json:"account_balance,omitempty"`
	RiskPercentage float64                 `json:"risk_percentage,omitempty"`
}

// balanceRequest records a broker-reported account balance.
type balanceRequest struct {
	Balance float64 `json:"balance" binding:"required"`
	Source  string  `json:"source,omitempty"`
}

func (s *Server) strategyConfig(override *signal.StrategyConfig) signal.StrategyConfig {
	if override != nil {
		return *override
	}
	return s.strategyCfg
}

// handleHealth reports service and dependency health.
func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if s.store != nil {
		if err := s.store.HealthCheck(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, status)
}

// handleValidateSignal runs the gates and persists the outcome.
func (s *Server) handleValidateSignal(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	cfg := s.strategyConfig(req.Config)
	result := s.validator.Validate(req.Signal, cfg)
	assessment := s.classifier.Classify(req.Signal, cfg)

	eval := &database.SignalEvaluation{
		ID:                uuid.New().String(),
		Symbol:            req.Signal.Symbol,
		Direction:         req.Signal.Direction,
		EntryPrice:        req.Signal.EntryPrice,
		StopLoss:          req.Signal.StopLoss,
		ConfidenceScore:   req.Signal.ConfidenceScore,
		RiskRewardRatio:   req.Signal.RewardRisk(),
		ConfluenceFactors: req.Signal.ConfluenceFactors,
		IsValid:           result.IsValid,
		Score:             result.Score,
		Reasons:           result.Reasons,
		Quality:           &assessment.Quality,
		ExpectedWinRate:   &assessment.ExpectedWinRate,
		ExpectedRRR:       &assessment.ExpectedRRR,
	}
	if req.Signal.TakeProfit1 != 0 {
		tp := req.Signal.TakeProfit1
		eval.TakeProfit = &tp
	}

	if s.store != nil {
		if err := s.store.CreateEvaluation(c.Request.Context(), eval); err != nil {
			// History is best-effort; the verdict still goes out.
			s.logger.WithError(err).Error("failed to persist evaluation")
			if s.eventBus != nil {
				s.eventBus.PublishError("persist_evaluation", err)
			}
		}
	}

	if s.eventBus != nil {
		s.eventBus.PublishSignalValidated(req.Signal.Symbol, req.Signal.Direction, result.Score, result.IsValid)
	}

	c.JSON(http.StatusOK, gin.H{
		"evaluation_id": eval.ID,
		"result":        result,
		"assessment":    assessment,
	})
}

// handleAssessSignal classifies a signal, serving from the assessment
// cache when possible.
func (s *Server) handleAssessSignal(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	if s.assessments != nil && req.Config == nil {
		if cached, err := s.assessments.Get(c.Request.Context(), req.Signal.Symbol, req.Signal.Direction); err == nil && cached != nil {
			c.JSON(http.StatusOK, gin.H{"assessment": cached, "cached": true})
			return
		}
	}

	cfg := s.strategyConfig(req.Config)
	assessment := s.classifier.Classify(req.Signal, cfg)

	if s.assessments != nil && req.Config == nil {
		if err := s.assessments.Put(c.Request.Context(), req.Signal.Symbol, req.Signal.Direction, &assessment); err != nil {
			s.logger.WithError(err).Warn("failed to cache assessment")
		}
	}

	if s.eventBus != nil {
		s.eventBus.PublishAssessmentUpdated(req.Signal.Symbol, req.Signal.Direction, assessment.Quality)
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment, "cached": false})
}

// handleListEvaluations returns recent evaluation history.
func (s *Server) handleListEvaluations(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "NO_STORE", "message": "evaluation history is not configured"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	evals, err := s.store.ListEvaluations(c.Request.Context(), c.Query("symbol"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STORE_ERROR", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluations": evals, "count": len(evals)})
}

// handleGetEvaluation returns one evaluation by id.
func (s *Server) handleGetEvaluation(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "NO_STORE", "message": "evaluation history is not configured"})
		return
	}

	eval, err := s.store.GetEvaluationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STORE_ERROR", "message": err.Error()})
		return
	}
	if eval == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND", "message": "evaluation not found"})
		return
	}
	c.JSON(http.StatusOK, eval)
}

// handleFactorCatalog returns the confluence factor table.
func (s *Server) handleFactorCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"factors": confluence.Catalog()})
}

// handlePairRules returns the per-symbol trading rule table.
func (s *Server) handlePairRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": signal.PairRules, "sessions": signal.Sessions})
}

// handlePositionSize sizes a trade. A result of 0 means "do not place
// this order", never "trade 0 units".
func (s *Server) handlePositionSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	balance := req.AccountBalance
	if balance == 0 && s.riskManager != nil {
		balance = s.riskManager.Balance()
	}
	riskPct := req.RiskPercentage
	if riskPct == 0 {
		riskPct = s.strategyCfg.RiskPercentage
	}

	size := risk.PositionSize(req.Signal, balance, riskPct)

	resp := gin.H{
		"symbol":          req.Signal.Symbol,
		"size":            size,
		"account_balance": balance,
		"risk_percentage": riskPct,
		"tradeable":       size > 0,
	}
	if s.riskManager != nil {
		ok, reason := s.riskManager.CanOpenTrade()
		resp["can_open_trade"] = ok
		if reason != "" {
			resp["blocked_reason"] = reason
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleAdjustStop widens a raw stop by the spread/slippage buffer.
func (s *Server) handleAdjustStop(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	adjusted := risk.AdjustStopLoss(req.Signal)
	c.JSON(http.StatusOK, gin.H{
		"symbol":        req.Signal.Symbol,
		"raw_stop":      req.Signal.StopLoss,
		"adjusted_stop": adjusted,
		"pip_value":     risk.PipValue(req.Signal.Symbol),
	})
}

// handleRiskMetrics returns the risk manager snapshot.
func (s *Server) handleRiskMetrics(c *gin.Context) {
	if s.riskManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "NO_RISK_MANAGER"})
		return
	}
	c.JSON(http.StatusOK, s.riskManager.Metrics())
}

// handleUpdateBalance records a broker-reported balance.
func (s *Server) handleUpdateBalance(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_REQUEST", "message": err.Error()})
		return
	}
	if req.Balance <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "INVALID_BALANCE", "message": "balance must be positive"})
		return
	}

	if s.riskManager != nil {
		s.riskManager.UpdateBalance(req.Balance)
	}
	if s.store != nil {
		snap := &database.AccountSnapshot{Balance: req.Balance, Source: req.Source}
		if err := s.store.CreateAccountSnapshot(c.Request.Context(), snap); err != nil {
			s.logger.WithError(err).Error("failed to persist account snapshot")
		}
	}
	if s.eventBus != nil {
		s.eventBus.PublishBalanceUpdated(req.Balance)
	}

	c.JSON(http.StatusOK, gin.H{"balance": req.Balance})
}
