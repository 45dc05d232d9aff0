package shop

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderShopDomain carries the merchant identity on every API call.
	HeaderShopDomain = "X-Shop-Domain"

	contextKey = "shop_domain"
)

// Middleware resolves the shop domain from the X-Shop-Domain header or the
// `shop` query parameter and stores it in the Gin context. Requests with no
// resolvable identity are refused before any handler runs.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderShopDomain)
		if raw == "" {
			raw = c.Query("shop")
		}
		domain, err := Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "unable to detect store: provide X-Shop-Domain header or shop query parameter",
			})
			return
		}
		c.Set(contextKey, domain)
		c.Next()
	}
}

// FromContext returns the shop domain stored by Middleware.
func FromContext(c *gin.Context) (Domain, error) {
	v, ok := c.Get(contextKey)
	if !ok {
		return "", ErrIdentityMissing
	}
	d, ok := v.(Domain)
	if !ok || d == "" {
		return "", ErrIdentityMissing
	}
	return d, nil
}
