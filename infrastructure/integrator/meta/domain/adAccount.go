package metadomain

// AdAccount é o retorno de /me/adaccounts. ID vem com o prefixo "act_".
type AdAccount struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	AccountStatus int    `json:"account_status"`
}

type ResponseAdAccount struct {
	Data   []AdAccount `json:"data"`
	Paging Paging      `json:"paging"`
}
