package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/literaryvoice/literary-voice/internal/api/metrics"
	"github.com/literaryvoice/literary-voice/internal/core/domain"
	"github.com/literaryvoice/literary-voice/internal/core/ports"
)

const defaultHistoryLimit = 20

type LedgerHandler struct {
	ledger ports.LedgerService
}

func NewLedgerHandler(ledger ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Balance returns the authenticated account's credit balance.
//
// @Summary      Get credit balance
// @Tags         ledger
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  balanceResponse
// @Failure      401  {object}  errorResponse
// @Router       /balance [get]
func (h *LedgerHandler) Balance(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balanceResponse{
		Credits: h.ledger.Balance(c.Request().Context(), account),
	})
}

// Deduct charges the authenticated account for a billable action.
//
// @Summary      Deduct credits
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Security     ApiKeyAuth
// @Param        Idempotency-Key  header    string         false  "Makes the charge safe to retry"
// @Param        body             body      deductRequest  true   "Charge details"
// @Success      200  {object}  creditsResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      402  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /deduct [post]
func (h *LedgerHandler) Deduct(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	var req deductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	start := time.Now()
	result, err := h.ledger.Charge(c.Request().Context(), account, ports.ChargeInput{
		Amount:         req.Amount,
		Action:         req.Action,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientCredits):
			metrics.ChargeFailuresTotal.WithLabelValues("insufficient_credits").Inc()
		case errors.Is(err, domain.ErrInvalidAmount):
			metrics.ChargeFailuresTotal.WithLabelValues("invalid_amount").Inc()
		}
		return err
	}

	metrics.ChargeDuration.WithLabelValues(req.Action).Observe(time.Since(start).Seconds())
	if !result.Replayed {
		metrics.CreditsChargedTotal.WithLabelValues(req.Action).Add(float64(req.Amount))
	}

	return c.JSON(http.StatusOK, creditsResponse{
		Credits: result.Balance,
		Message: fmt.Sprintf("%d credits deducted", req.Amount),
	})
}

// AddCredits grants credits to an account. Gated by the admin key carried
// in the request body, not by account authentication.
//
// @Summary      Add credits to an account
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        body  body      addCreditsRequest  true  "Grant details"
// @Success      200   {object}  creditsResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /add_credits [post]
func (h *LedgerHandler) AddCredits(c echo.Context) error {
	var req addCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	balance, err := h.ledger.Grant(c.Request().Context(), ports.GrantInput{
		Email:    req.Email,
		Amount:   req.Amount,
		AdminKey: req.AdminKey,
	})
	if err != nil {
		return err
	}

	metrics.CreditsGrantedTotal.Add(float64(req.Amount))

	return c.JSON(http.StatusOK, creditsResponse{
		Credits: balance,
		Message: fmt.Sprintf("%d credits added", req.Amount),
	})
}

// Transactions lists the authenticated account's recent ledger entries.
//
// @Summary      List recent transactions
// @Tags         ledger
// @Produce      json
// @Security     ApiKeyAuth
// @Success      200  {object}  transactionsResponse
// @Failure      401  {object}  errorResponse
// @Router       /transactions [get]
func (h *LedgerHandler) Transactions(c echo.Context) error {
	account, err := ctxAccount(c)
	if err != nil {
		return err
	}

	transactions, err := h.ledger.History(c.Request().Context(), account, defaultHistoryLimit)
	if err != nil {
		return err
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	return c.JSON(http.StatusOK, transactionsResponse{Transactions: transactions})
}
