package handlers

import (
	"net/http"

	"rencontre_backend/internal/payments/fedapay"
	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	payments := rg.Group("/payments")
	{
		payments.GET("/callback", h.Callback)
		payments.POST("/webhook/", mw.WebhookLimit, h.Webhook)
	}

	protected := payments.Group("")
	protected.Use(mw.Auth)
	{
		protected.POST("/create-transaction", h.CreateTransaction)
		protected.GET("/check-status/:id", h.CheckStatus)
		protected.GET("/can-download/:documentId", h.CanDownload)
		protected.POST("/consume-credit", h.ConsumeCredit)
		protected.GET("/subscription", h.GetSubscription)
		protected.GET("/transactions", h.ListTransactions)
	}
}

func (h *PaymentHandler) CreateTransaction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.CreateTransaction(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Callback - возврат браузера со страницы FedaPay
func (h *PaymentHandler) Callback(c *gin.Context) {
	target := h.paymentService.CallbackRedirect(h.GetDB(c), c.Query("transaction_id"), c.Query("status"))
	c.Redirect(http.StatusFound, target)
}

func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	transactionID, ok := PathUUID(c, "id", "payment")
	if !ok {
		return
	}
	resp, err := h.paymentService.CheckStatus(c.Request.Context(), h.GetDB(c), userID, transactionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Webhook - подпись считается по сырому телу, поэтому JSON здесь не биндим
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Cannot read request body"))
		return
	}

	resp, err := h.paymentService.HandleWebhook(c.Request.Context(), h.GetDB(c), body, c.GetHeader(fedapay.SignatureHeader))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CanDownload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	documentID, ok := PathUUID(c, "documentId", "document")
	if !ok {
		return
	}
	resp, err := h.paymentService.CanDownload(h.GetDB(c), userID, documentID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ConsumeCredit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ConsumeCreditRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.paymentService.ConsumeCredit(h.GetDB(c), userID, req.CreditID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.paymentService.GetSubscription(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.paymentService.ListTransactions(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
