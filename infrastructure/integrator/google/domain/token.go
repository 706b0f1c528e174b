package googledomain

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// TokenError é o corpo de erro do endpoint OAuth, por exemplo {"error":"invalid_grant"}
type TokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
