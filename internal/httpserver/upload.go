package httpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/droneshop/internal/logging"
	"github.com/Skotchmaster/droneshop/internal/media"
	"github.com/Skotchmaster/droneshop/internal/transport"
)

type ImageStore interface {
	Upload(ctx context.Context, original, contentType string, r io.Reader, size int64) (*media.Object, error)
	Delete(ctx context.Context, name string) error
}

// UploadHTTP answers 503 for every request when Media is nil.
type UploadHTTP struct {
	Media ImageStore
}

func (h *UploadHTTP) notConfigured(c echo.Context) error {
	logging.FromContext(c.Request().Context()).Warn("upload_error", "status", 503, "reason", "object storage not configured")
	return echo.NewHTTPError(http.StatusServiceUnavailable, "File storage is not configured")
}

func (h *UploadHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.upload_image")

	if h.Media == nil {
		return h.notConfigured(c)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn("upload_image_error", "status", 400, "reason", "no file uploaded", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return fail(l, "upload_image_error", err, "Failed to upload image")
	}
	defer f.Close()

	obj, err := h.Media.Upload(ctx, fh.Filename, fh.Header.Get(echo.HeaderContentType), f, fh.Size)
	if err != nil {
		return fail(l, "upload_image_error", err, "Failed to upload image")
	}

	l.Info("upload_image_success", "filename", obj.Filename, "size", obj.Size)
	return c.JSON(http.StatusOK, transport.UploadResponse{
		Success:  true,
		Message:  "Image uploaded successfully",
		ImageURL: obj.URL,
		Filename: obj.Filename,
	})
}

func (h *UploadHTTP) DeleteImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.delete_image")

	if h.Media == nil {
		return h.notConfigured(c)
	}
	if err := h.Media.Delete(ctx, c.Param("filename")); err != nil {
		return fail(l, "delete_image_error", err, "Failed to delete image")
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Success: true, Message: "Image deleted successfully"})
}
