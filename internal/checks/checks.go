// Package checks defines the contract for image quality check extractors.
package checks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Canonical check names shared between extractors and the scoring weights.
const (
	BackgroundWhite      = "background_white"
	Blur                 = "blur"
	ObjectCoverage       = "object_coverage"
	ObjectDetection      = "object_detection"
	PerceptualSimilarity = "perceptual_similarity"
)

// Extractor computes per-check scores in [0, 1] for an image. Extractors may
// return a partial map; absent checks are excluded from scoring.
type Extractor interface {
	Extract(ctx context.Context, imageRef string) (map[string]float64, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, imageRef string) (map[string]float64, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, imageRef string) (map[string]float64, error) {
	return f(ctx, imageRef)
}

// FileSHA256 returns the hex SHA-256 digest of a file, used to deduplicate
// image content across submissions.
func FileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
