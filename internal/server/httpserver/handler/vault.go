package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) handleDashboard(c *gin.Context) {
	user, ok := h.users.Get(currentUser(c))
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unknown user")
		return
	}

	body := gin.H{}
	for k, v := range user.Fields {
		body[k] = v
	}
	body["_id"], body["email"] = user.ID, user.Email
	c.JSON(http.StatusOK, body)
}

func (h *Handler) handleListPasswords(c *gin.Context) {
	user, _ := h.users.Get(currentUser(c))
	passwords := user.Passwords
	if passwords == nil {
		passwords = []PasswordRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"passwords": passwords})
}

func (h *Handler) handleAddPassword(c *gin.Context) {
	var rec PasswordRecord
	if err := c.ShouldBindJSON(&rec); err != nil || rec.AppName == "" || rec.Password == "" {
		respondError(c, http.StatusBadRequest, "appName and password are required")
		return
	}
	rec.ID = uuid.NewString()

	h.users.Update(currentUser(c), func(u *User) {
		u.Passwords = append(u.Passwords, rec)
	})
	c.JSON(http.StatusCreated, gin.H{"message": "Password saved", "password": rec})
}

func (h *Handler) handleListTodos(c *gin.Context) {
	user, _ := h.users.Get(currentUser(c))
	if len(user.Todos) == 0 {
		respondError(c, http.StatusNotFound, "No todos found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fetchingalltodo": user.Todos})
}

func (h *Handler) handleAddTodo(c *gin.Context) {
	var rec TodoRecord
	if err := c.ShouldBindJSON(&rec); err != nil || rec.Title == "" {
		respondError(c, http.StatusBadRequest, "Title is required")
		return
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = h.now().UTC().Format(time.RFC3339)

	h.users.Update(currentUser(c), func(u *User) {
		u.Todos = append(u.Todos, rec)
	})
	c.JSON(http.StatusCreated, MessageResponse{Message: "Todo created successfully"})
}
