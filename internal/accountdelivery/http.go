// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/account-bank/internal/domain"
	"github.com/go-petr/account-bank/pkg/errorspkg"
	"github.com/go-petr/account-bank/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, number int64, accountType domain.AccountType, initialBalance string) (domain.Account, error)
	Get(ctx context.Context, number int64) (domain.Account, error)
	Debit(ctx context.Context, number int64, amount string) (domain.Account, error)
	Credit(ctx context.Context, number int64, amount string) (domain.Account, error)
	YieldInterestByAccount(ctx context.Context, number int64, ratePercent string) (domain.Account, error)
	YieldInterest(ctx context.Context, ratePercent string) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}

type createRequest struct {
	Number  int64              `json:"number" binding:"required,min=1"`
	Type    domain.AccountType `json:"type" binding:"required,accounttype"`
	Balance string             `json:"balance" binding:"required"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	createdAccount, err := h.service.Create(ctx, req.Number, req.Type, req.Balance)
	if err != nil {
		switch err {
		case domain.ErrAccountAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrInitialBalanceRequired,
			domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrUnsupportedAccountType:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{createdAccount}})
}

type numberRequest struct {
	Number int64 `uri:"number" binding:"required,min=1"`
}

// Get handles http request to get account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req numberRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	acc, err := h.service.Get(ctx, req.Number)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type amountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Debit handles http request to withdraw money from account.
func (h *Handler) Debit(gctx *gin.Context) {
	h.updateBalance(gctx, h.service.Debit)
}

// Credit handles http request to deposit money to account.
func (h *Handler) Credit(gctx *gin.Context) {
	h.updateBalance(gctx, h.service.Credit)
}

func (h *Handler) updateBalance(gctx *gin.Context, op func(ctx context.Context, number int64, amount string) (domain.Account, error)) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri numberRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req amountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	acc, err := op(ctx, uri.Number, req.Amount)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type rateRequest struct {
	Rate string `json:"rate" binding:"required"`
}

// YieldInterest handles http request to accrue interest on a single account.
func (h *Handler) YieldInterest(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var uri numberRequest
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req rateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	acc, err := h.service.YieldInterestByAccount(ctx, uri.Number, req.Rate)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidInterestRate:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{acc}})
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}
type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// YieldInterestAll handles http request to accrue interest on all Saving accounts.
func (h *Handler) YieldInterestAll(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req rateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	accounts, err := h.service.YieldInterest(ctx, req.Rate)
	if err != nil {
		if err == domain.ErrInvalidInterestRate {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}
