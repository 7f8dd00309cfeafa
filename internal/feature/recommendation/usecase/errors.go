package usecase

import "errors"

var (
	// ErrAnalyzerDisabled is returned when no text generation backend is configured.
	ErrAnalyzerDisabled = errors.New("analysis is not configured")

	// ErrInvalidCompanyName は企業名が空・長すぎる・不正な文字を含む場合のエラーです。
	ErrInvalidCompanyName = errors.New("invalid company name")
)
