// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

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

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type createRequest struct {
	FromNumber int64  `json:"from_number" binding:"required,min=1"`
	ToNumber   int64  `json:"to_number" binding:"required,min=1"`
	Amount     string `json:"amount" binding:"required"`
}

type data struct {
	Transfer domain.TransferTxResult `json:"transfer"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to transfer money between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	result, err := h.service.Transfer(ctx, domain.CreateTransferParams{
		FromNumber: req.FromNumber,
		ToNumber:   req.ToNumber,
		Amount:     req.Amount,
	})
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrInvalidAmount,
			domain.ErrNegativeAmount,
			domain.ErrInsufficientBalance,
			domain.ErrSameAccount:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{result}})
}
