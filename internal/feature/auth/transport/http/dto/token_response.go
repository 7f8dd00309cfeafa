package dto

// TokenRes は/loginの成功時のレスポンスです。
type TokenRes struct {
	Token string `json:"token"`
}
