package utils

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Upload folders on the media store, matching the existing asset layout.
const (
	FolderBloodRequests  = "blood-requests"
	FolderMedicalReports = "medical-reports"
	FolderProfileImages  = "profile-images"
)

var mediaStore *cloudinary.Cloudinary

// InitMediaStore configures the Cloudinary client from CLOUDINARY_URL.
func InitMediaStore() error {
	cld, err := cloudinary.New()
	if err != nil {
		return err
	}
	mediaStore = cld
	return nil
}

// UploadFile streams a multipart attachment to the media store and returns
// its durable public URL. Any failure is returned to the caller; an upload
// must never silently resolve to an empty URL.
func UploadFile(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	if mediaStore == nil {
		return "", errors.New("media store not initialized")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	result, err := mediaStore.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   folder,
		PublicID: uuid.NewString(),
	})
	if err != nil {
		return "", err
	}
	if result.SecureURL == "" {
		return "", errors.New("media store returned no URL")
	}
	return result.SecureURL, nil
}
