package core

import (
	"errors"
)

var (
	ErrSwapchainBooting            = errors.New("swapchain resized or recreated, booting")
	ErrUnknown                     = errors.New("unknown")
	ErrNoSuitableDevice            = errors.New("no physical device meets the requirements")
	ErrNoSuitableMemoryType        = errors.New("no suitable memory type")
	ErrUnsupportedLayoutTransition = errors.New("unsupported image layout transition")
	ErrLinearBlitUnsupported       = errors.New("texture image format does not support linear blitting")
	ErrAssetNotFound               = errors.New("asset not found")
	ErrInvalidMesh                 = errors.New("invalid mesh data")
)
