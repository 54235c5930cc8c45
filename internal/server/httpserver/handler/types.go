package handler

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued access token. The field name is
// spelled the way the real backends spell it.
type TokenResponse struct {
	AccessToken string `json:"acesstoken"`
	Message     string `json:"message,omitempty"`
}

// MessageResponse is used for plain confirmations and for every error.
type MessageResponse struct {
	Message string `json:"message"`
}

// PasswordRecord is a vault entry.
type PasswordRecord struct {
	ID       string `json:"_id"`
	AppName  string `json:"appName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TodoRecord is a vault todo.
type TodoRecord struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

// Image is a product image reference.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// ProductRecord is a marketplace listing.
type ProductRecord struct {
	ID           string  `json:"_id"`
	Name         string  `json:"productname"`
	Description  string  `json:"decription"`
	Type         string  `json:"producttype"`
	Images       []Image `json:"images"`
	SellerName   string  `json:"sellername"`
	SellerNumber string  `json:"sellernumber"`
}
