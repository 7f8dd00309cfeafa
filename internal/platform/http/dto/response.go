// Package dto はフィーチャー間で共通のレスポンスDTOを提供します。
package dto

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文が不要な成功時のレスポンスDTOです。
type MessageResponse struct {
	Message string `json:"message"`
}
