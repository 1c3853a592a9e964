package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imovelhub/unit-sales/internal/service"
)

// ContractHandler serves the interactive signature endpoints and the
// builder's contract updates.
type ContractHandler struct {
	Svc *service.SignatureService
}

func NewContractHandler(svc *service.SignatureService) *ContractHandler {
	return &ContractHandler{Svc: svc}
}

type clientSignatureReq struct {
	TypedName string `json:"typed_name"`
}

// ClientSignature applies the client's signature after the typed-name
// identity check.
func (h *ContractHandler) ClientSignature(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	var req clientSignatureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ct, err := h.Svc.SignAsClient(c.Request().Context(), id, currentUserID(c), req.TypedName)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contract": contractJSON(ct)})
}

// BuilderSignature applies the builder's signature.
func (h *ContractHandler) BuilderSignature(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}

	ct, err := h.Svc.SignAsBuilder(c.Request().Context(), id, currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contract": contractJSON(ct)})
}

type updateContractReq struct {
	DocumentURL *string `json:"document_url"`
	Send        bool    `json:"send"`
	Cancel      bool    `json:"cancel"`
}

// Update lets the owning builder attach the contract document, publish it
// to the client, or cancel the contract.
func (h *ContractHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid purchase id"})
	}
	var req updateContractReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ct, err := h.Svc.UpdateContract(c.Request().Context(), id, currentUserID(c), req.DocumentURL, req.Send, req.Cancel)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"contract": contractJSON(ct)})
}
