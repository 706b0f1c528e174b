package metadomain

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode,omitempty"`
	FBTraceID    string `json:"fbtrace_id"`
}

// IsTokenExpired verifica se o erro é de credencial inválida.
// 190 é token inválido/expirado, 102 sessão inválida; 460/463/467 chegam como subcódigo de OAuthException.
func (e *ErrorResponse) IsTokenExpired() bool {
	switch e.Error.Code {
	case 190, 102, 463, 467:
		return true
	}
	return e.Error.Type == "OAuthException" &&
		(e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467)
}

// IsRateLimited cobre os limites de app (4), usuário (17), parceiro (32), chamada (613)
// e os limites de caso de uso de negócio (80000-80014)
func (e *ErrorResponse) IsRateLimited() bool {
	switch e.Error.Code {
	case 4, 17, 32, 613:
		return true
	}
	return e.Error.Code >= 80000 && e.Error.Code <= 80014
}

// BusinessUseCaseUsage é o conteúdo do header X-Business-Use-Case-Usage, indexado pelo business id
type BusinessUseCaseUsage map[string][]UseCaseUsage

type UseCaseUsage struct {
	Type                        string `json:"type"`
	CallCount                   int    `json:"call_count"`
	TotalCPUTime                int    `json:"total_cputime"`
	TotalTime                   int    `json:"total_time"`
	EstimatedTimeToRegainAccess int    `json:"estimated_time_to_regain_access"`
}
