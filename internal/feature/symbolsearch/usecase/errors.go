package usecase

import "errors"

var (
	// ErrEmptyImage is returned when no image bytes were uploaded.
	ErrEmptyImage = errors.New("image data is empty")

	// ErrImageTooLarge is returned when the upload exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image too large")

	// ErrLogoSearchDisabled is returned when no logo detector is configured.
	ErrLogoSearchDisabled = errors.New("logo search is disabled")
)
