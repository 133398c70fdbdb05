package dto

type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenGenerateRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type TokenPairResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}
