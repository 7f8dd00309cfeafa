// Package vision はGoogle Cloud Vision APIを使用したロゴ検出クライアントを提供します。
// 検出したロゴ名は銘柄検索に使われます。
package vision

import (
	"context"
	"fmt"
	"sort"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"watchlist_backend/internal/feature/symbolsearch/domain/entity"
	"watchlist_backend/internal/feature/symbolsearch/usecase"
)

// VisionLogoDetector はGoogle Cloud Vision APIを使用してロゴを検出します。
type VisionLogoDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionLogoDetectorがLogoDetectorを実装していることをコンパイル時に検証します。
var _ usecase.LogoDetector = (*VisionLogoDetector)(nil)

// NewVisionLogoDetector はADCを使用してVisionLogoDetectorの新しいインスタンスを生成します。
func NewVisionLogoDetector(ctx context.Context) (*VisionLogoDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionLogoDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionLogoDetector) Close() error {
	return v.client.Close()
}

// DetectLogos は画像バイト列からロゴを検出します。
func (v *VisionLogoDetector) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LOGO_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	return logosFromResponse(resp)
}

// logosFromResponse は最初の画像の検出結果を信頼度の高い順に返します。
func logosFromResponse(resp *visionpb.BatchAnnotateImagesResponse) ([]entity.DetectedLogo, error) {
	if len(resp.GetResponses()) == 0 {
		return nil, nil
	}
	first := resp.GetResponses()[0]
	if first.GetError() != nil {
		return nil, fmt.Errorf("vision API error: %s", first.GetError().GetMessage())
	}

	logos := make([]entity.DetectedLogo, 0, len(first.GetLogoAnnotations()))
	for _, logo := range first.GetLogoAnnotations() {
		name := strings.TrimSpace(logo.GetDescription())
		if name == "" {
			continue
		}
		logos = append(logos, entity.DetectedLogo{Name: name, Confidence: logo.GetScore()})
	}
	sort.SliceStable(logos, func(i, j int) bool { return logos[i].Confidence > logos[j].Confidence })
	return logos, nil
}
