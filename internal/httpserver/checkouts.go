package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"storefront-checkout/internal/domain"
	checkoutsvc "storefront-checkout/internal/service/checkout"
)

func createCheckoutHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.CreateInput
		// An empty body creates an empty checkout.
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, http.StatusBadRequest, "InvalidJsonInput", "invalid request body")
			return
		}
		co, err := svc.Create(c.Request.Context(), projectFrom(c).ID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toCTCheckout(co))
	}
}

func getCheckoutHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		co, err := svc.Get(c.Request.Context(), projectFrom(c).ID, c.Param("token"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCheckout(co))
	}
}

func updateCheckoutHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkoutsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			abortWithError(c, http.StatusBadRequest, "InvalidJsonInput", "invalid request body")
			return
		}
		co, err := svc.Update(c.Request.Context(), projectFrom(c).ID, c.Param("token"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCheckout(co))
	}
}

func getGiftCardHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := giftCardID(c)
		if !ok {
			return
		}
		co, err := svc.Get(c.Request.Context(), projectFrom(c).ID, c.Param("token"))
		if err != nil {
			writeError(c, err)
			return
		}
		gc, ok := co.GiftCardByID(id)
		if !ok {
			writeError(c, fmt.Errorf("gift card %d: %w", id, domain.ErrNotFound))
			return
		}
		c.JSON(http.StatusOK, toCTGiftCard(gc, co.Currency()))
	}
}

func removeGiftCardHandler(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := giftCardID(c)
		if !ok {
			return
		}
		co, err := svc.RemoveGiftCard(c.Request.Context(), projectFrom(c).ID, c.Param("token"), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCheckout(co))
	}
}

func giftCardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "InvalidInput", "gift card id must be a positive integer")
		return 0, false
	}
	return id, true
}
