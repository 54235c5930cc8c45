package handler

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// catalog holds the marketplace listings shared by all users.
type catalog struct {
	mu       sync.RWMutex
	products []ProductRecord
}

func (c *catalog) add(p ProductRecord) {
	c.mu.Lock()
	c.products = append(c.products, p)
	c.mu.Unlock()
}

func (c *catalog) list() []ProductRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ProductRecord{}, c.products...)
}

func agentInfo(u User) gin.H {
	info := gin.H{}
	for k, v := range u.Fields {
		info[k] = v
	}
	info["_id"], info["email"], info["hasPaid"] = u.ID, u.Email, u.HasPaid
	return info
}

func (h *Handler) handleAgent(c *gin.Context) {
	user, ok := h.users.Get(currentUser(c))
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unknown user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"userinfo": []gin.H{agentInfo(user)}})
}

func (h *Handler) handleMarketplace(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"allproductindb": h.catalog.list()})
}

func (h *Handler) handleAddProduct(c *gin.Context) {
	user, _ := h.users.Get(currentUser(c))
	if !user.HasPaid {
		respondError(c, http.StatusForbidden, "Only verified sellers can list products")
		return
	}

	var p ProductRecord
	if err := c.ShouldBindJSON(&p); err != nil || p.Name == "" || p.Description == "" || p.Type == "" {
		respondError(c, http.StatusBadRequest, "productname, decription and producttype are required")
		return
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	p.ID = uuid.NewString()
	p.SellerName = user.Fields["agentName"]
	p.SellerNumber = user.Fields["phoneNumber"]

	h.catalog.add(p)
	c.JSON(http.StatusCreated, gin.H{"message": "Product added successfully", "product": p})
}

// handleVerify stands in for the payment provider: references starting with
// "fail" are declined, anything else marks the agent as paid.
func (h *Handler) handleVerify(c *gin.Context) {
	ref := c.Param("reference")
	if strings.HasPrefix(ref, "fail") {
		c.JSON(http.StatusOK, MessageResponse{Message: "Payment verification failed"})
		return
	}

	h.users.Update(currentUser(c), func(u *User) {
		u.HasPaid = true
	})
	h.logger.Info("payment verified", "user_id", currentUser(c), "reference", ref)
	c.JSON(http.StatusOK, MessageResponse{Message: "Payment successful"})
}
