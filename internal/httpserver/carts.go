package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cartsvc "storefront-checkout/internal/service/cart"
)

func createCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			abortWithError(c, http.StatusBadRequest, "InvalidJsonInput", "invalid request body")
			return
		}
		cart, err := svc.Create(c.Request.Context(), projectFrom(c).ID, in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toCTCart(cart))
	}
}

func getCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Get(c.Request.Context(), projectFrom(c).ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCart(cart))
	}
}

func updateCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			abortWithError(c, http.StatusBadRequest, "InvalidJsonInput", "invalid request body")
			return
		}
		cart, err := svc.Update(c.Request.Context(), projectFrom(c).ID, c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCart(cart))
	}
}

func deleteCartHandler(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := svc.Delete(c.Request.Context(), projectFrom(c).ID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCTCart(cart))
	}
}
