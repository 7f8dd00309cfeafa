// Package dto はwatchlistフィーチャーのHTTPリクエスト/レスポンス型を定義します。
package dto

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"watchlist_backend/internal/feature/watchlist/domain/entity"
)

// ErrInvalidPrice は価格が数値でない、または0以下の場合のエラーです。
var ErrInvalidPrice = errors.New("invalid price")

// AddSymbolRequest は銘柄追加のリクエストです。
type AddSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// ReorderRequest は並べ替えのリクエストです。先頭から順に表示順を割り当てます。
type ReorderRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
}

// UpdateEntryRequest はエントリー編集のリクエストです。
// 省略した項目は変更しません。価格に空文字列を指定すると設定を削除します。
type UpdateEntryRequest struct {
	Alias         *string `json:"alias" binding:"omitempty,max=64"`
	TargetPrice   *string `json:"target_price"`
	StopLossPrice *string `json:"stop_loss_price"`
	AlertEnabled  *bool   `json:"alert_enabled"`
}

// ToPatch validates the request and converts it to an EntryPatch.
func (r UpdateEntryRequest) ToPatch() (entity.EntryPatch, error) {
	p := entity.EntryPatch{Alias: r.Alias, AlertEnabled: r.AlertEnabled}

	target, clearTarget, err := parsePrice(r.TargetPrice)
	if err != nil {
		return entity.EntryPatch{}, err
	}
	p.TargetPrice, p.ClearTargetPrice = target, clearTarget

	stop, clearStop, err := parsePrice(r.StopLossPrice)
	if err != nil {
		return entity.EntryPatch{}, err
	}
	p.StopLossPrice, p.ClearStopLoss = stop, clearStop
	return p, nil
}

func parsePrice(s *string) (*decimal.Decimal, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil, true, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		return nil, false, ErrInvalidPrice
	}
	return &d, false, nil
}

// CreateAlertRequest は価格アラート作成のリクエストです。
type CreateAlertRequest struct {
	Symbol  string `json:"symbol" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=above below percent_change"`
	Target  string `json:"target" binding:"required"`
	Message string `json:"message" binding:"max=255"`
}
