package api

import (
	"fmt"
	"immofds/server/internal/apperr"
	"immofds/server/internal/geometry"
	"immofds/server/internal/listing"
	"immofds/server/internal/models"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const imageCacheControl = "public, max-age=604800"

type StatusRequest struct {
	Status string `json:"status"`
}

type ReorderRequest struct {
	ImageIDs []int64 `json:"imageIds"`
}

// Public

func (h *Handler) SearchPublicProperties(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	page, err := parsePage(c, h.cfg.Listings.PublicPageSize, h.cfg.Listings.MaxPageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.public.Search(c.Request.Context(), criteria, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPublicProperty(c *gin.Context) {
	detail, err := h.public.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetPublicImage answers 404 for ids that cannot exist, like every other
// public miss.
func (h *Handler) GetPublicImage(c *gin.Context) {
	imageID, err := parseID(c, "imageId")
	if err != nil {
		h.respondError(c, apperr.NotFound("image %s not found", c.Param("imageId")))
		return
	}
	img, err := h.public.Image(c.Request.Context(), c.Param("reference"), imageID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	serveImage(c, img)
}

func (h *Handler) GetPropertyMap(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	listings, err := h.public.Locate(c.Request.Context(), criteria)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, geometry.ListingFeatures(listings))
}

func (h *Handler) GetPropertyTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.OptionsOf(models.PropertyTypes))
}

func (h *Handler) GetTransactionTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.OptionsOf(models.TransactionTypes))
}

func (h *Handler) GetProvinces(c *gin.Context) {
	c.JSON(http.StatusOK, models.OptionsOf(models.Provinces))
}

func (h *Handler) GetEnergyRatings(c *gin.Context) {
	c.JSON(http.StatusOK, models.OptionsOf(models.EnergyRatings))
}

// Admin

func (h *Handler) SearchProperties(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	page, err := parsePage(c, h.cfg.Listings.AdminPageSize, h.cfg.Listings.MaxPageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.admin.Search(c.Request.Context(), criteria, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPropertyStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetProperty(c *gin.Context) {
	detail, err := h.admin.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var in models.ListingInput
	if !h.bindJSON(c, &in) {
		return
	}
	l, err := h.listings.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing.ToDetail(*l))
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	var in models.ListingInput
	if !h.bindJSON(c, &in) {
		return
	}
	l, err := h.listings.Update(c.Request.Context(), c.Param("reference"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing.ToDetail(*l))
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	if err := h.listings.SoftDelete(c.Request.Context(), c.Param("reference")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ChangePropertyStatus(c *gin.Context) {
	var req StatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	status := normaliseEnum(req.Status)
	if status == "" {
		h.respondError(c, apperr.Validation("status is required"))
		return
	}
	l, err := h.listings.ChangeStatus(c.Request.Context(), c.Param("reference"), models.ListingStatus(status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing.ToDetail(*l))
}

// Images

func (h *Handler) ListImages(c *gin.Context) {
	images, err := h.images.List(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *Handler) GetImage(c *gin.Context) {
	imageID, err := parseID(c, "imageId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	img, err := h.images.Get(c.Request.Context(), c.Param("reference"), imageID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	serveImage(c, img)
}

// UploadImage accepts a multipart form with a "file" part and an optional
// "isPrimary" flag.
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, apperr.Validation("file is required"))
		return
	}
	limit := h.cfg.Listings.MaxImageBytes
	if limit > 0 && fh.Size > limit {
		h.respondError(c, apperr.Validation(fmt.Sprintf("file must be at most %d bytes", limit)))
		return
	}

	primary := false
	if raw := c.PostForm("isPrimary"); raw != "" {
		primary, err = strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, apperr.Validation("isPrimary must be true or false"))
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		h.respondError(c, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		h.respondError(c, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	img, err := h.images.Upload(c.Request.Context(), c.Param("reference"), listing.Upload{
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, primary)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *Handler) ReorderImages(c *gin.Context) {
	var req ReorderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	images, err := h.images.Reorder(c.Request.Context(), c.Param("reference"), req.ImageIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *Handler) SetPrimaryImage(c *gin.Context) {
	imageID, err := parseID(c, "imageId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.images.SetPrimary(c.Request.Context(), c.Param("reference"), imageID); err != nil {
		h.respondError(c, err)
		return
	}
	images, err := h.images.List(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	imageID, err := parseID(c, "imageId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.images.Delete(c.Request.Context(), c.Param("reference"), imageID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func serveImage(c *gin.Context, img *models.ListingImage) {
	c.Header("Cache-Control", imageCacheControl)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.FileName))
	c.Data(http.StatusOK, img.ContentType, img.Data)
}
