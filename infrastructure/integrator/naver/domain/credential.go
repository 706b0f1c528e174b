package naverdomain

// Credential é o que a Naver usa no lugar de um token OAuth.
// Serializado em JSON, ocupa o campo de access token da conta conectada.
type Credential struct {
	APIKey     string `json:"apiKey" validate:"required"`
	SecretKey  string `json:"secretKey" validate:"required"`
	CustomerID string `json:"customerId" validate:"required,numeric"`
}
