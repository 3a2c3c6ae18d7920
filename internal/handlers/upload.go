// internal/handlers/upload.go
package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

// storeFile uploads one multipart file with the options of the given kind.
func storeFile(c *gin.Context, storage *services.StorageService, header *multipart.FileHeader, kind string) (*services.UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return storage.Upload(c.Request.Context(), file, storage.GetDefaultUploadOptions(kind))
}

// uploadFormFile stores the file under field and writes the error response
// itself when the file is missing or rejected.
func uploadFormFile(c *gin.Context, storage *services.StorageService, field, kind string) (*services.UploadResult, bool) {
	lang := utils.GetLangFromContext(c)

	header, err := c.FormFile(field)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileRequired), nil)
		return nil, false
	}

	result, err := storeFile(c, storage, header, kind)
	if err != nil {
		respondUploadError(c, err)
		return nil, false
	}
	return result, true
}

func respondUploadError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidFileType) || errors.Is(err, services.ErrFileTooLarge) {
		respondError(c, err)
		return
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Upload failed")
	utils.InternalErrorResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyFileUploadFailed))
}
