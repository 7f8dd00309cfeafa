// Package entity defines the domain models for the symbolsearch feature.
package entity

import "time"

// Symbol is a listed ticker that users can search for and add to a watchlist.
type Symbol struct {
	ID        uint
	Code      string
	Name      string
	Market    string
	IsActive  bool
	SortKey   int
	UpdatedAt time.Time
}

// DetectedLogo は画像から検出されたロゴを表します。
type DetectedLogo struct {
	Name       string  // 検出された企業名
	Confidence float32 // 信頼度スコア（0.0 ~ 1.0）
}

// LogoMatch は検出したロゴと、その名前で検索した銘柄の組です。
type LogoMatch struct {
	Logo    DetectedLogo
	Symbols []Symbol
}
