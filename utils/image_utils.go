package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	uploadBaseDir = "uploads"
	baseURL       = "/uploads"
	// Maximum upload size (5MB)
	maxImageSize = 5 * 1024 * 1024
	// Stored avatar edge length
	avatarSize = 320
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// SaveProfileImage validates, resizes and stores an uploaded avatar,
// returning its public URL
func SaveProfileImage(file *multipart.FileHeader, userID string) (string, error) {
	if file.Size > maxImageSize {
		return "", fmt.Errorf("image exceeds the %dMB limit", maxImageSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	dir := filepath.Join(uploadBaseDir, "profiles")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%d.jpg", userID, time.Now().Unix())
	path := filepath.Join(dir, filename)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return baseURL + "/profiles/" + filename, nil
}
