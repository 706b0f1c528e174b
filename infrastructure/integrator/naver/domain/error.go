package naverdomain

// CodeTooManyRequests é devolvido quando a cota por segundo da API é excedida
const CodeTooManyRequests = 1016

type ErrorResponse struct {
	Code   int    `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func (e *ErrorResponse) Message() string {
	if e.Detail != "" {
		return e.Title + ": " + e.Detail
	}
	return e.Title
}
