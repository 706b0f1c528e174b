package googledomain

const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// ErrorResponse segue o formato google.rpc.Status
type ErrorResponse struct {
	Error struct {
		Code    int           `json:"code"`
		Message string        `json:"message"`
		Status  string        `json:"status"`
		Details []ErrorDetail `json:"details"`
	} `json:"error"`
}

type ErrorDetail struct {
	Type       string `json:"@type"`
	RetryDelay string `json:"retryDelay,omitempty"`
}

func (e *ErrorResponse) IsAuthError() bool {
	return e.Error.Status == "UNAUTHENTICATED" || e.Error.Status == "PERMISSION_DENIED"
}

func (e *ErrorResponse) IsRateLimited() bool {
	return e.Error.Status == "RESOURCE_EXHAUSTED"
}

// RetryDelay devolve o retryDelay do detalhe RetryInfo, ex. "30s"
func (e *ErrorResponse) RetryDelay() string {
	for _, d := range e.Error.Details {
		if d.Type == retryInfoType && d.RetryDelay != "" {
			return d.RetryDelay
		}
	}
	return ""
}
