package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/saransh1220/premium-profile/internal/gateway/middleware"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
	"github.com/saransh1220/premium-profile/internal/shared/utils"
)

const (
	// multipartOverhead is the room allowed on top of the file for boundaries and headers.
	multipartOverhead = 1 << 20
	jsonOverhead      = 64 << 10
	logoFormField     = "logo"
)

// Limits caps request bodies
type Limits struct {
	MaxLogoSize   int64
	MaxQRSnapshot int64
}

type Handler struct {
	service ProfileShareService
	limits  Limits
	logger  *slog.Logger
}

func NewHandler(service ProfileShareService, limits Limits, logger *slog.Logger) *Handler {
	if limits.MaxLogoSize <= 0 {
		limits.MaxLogoSize = 5 << 20
	}
	if limits.MaxQRSnapshot <= 0 {
		limits.MaxQRSnapshot = 2 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, limits: limits, logger: logger}
}

type saveQRRequest struct {
	QRCodeImage string `json:"qrCodeImage"`
}

// Get handles GET /profile-share
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	record, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "Failed to load profile share")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", record)
}

// Update handles PUT /profile-share
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var patch domain.Patch
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxQRSnapshot+jsonOverhead)
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.service.Update(r.Context(), userID, patch)
	if err != nil {
		h.fail(w, r, err, "Failed to update profile share")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Profile share updated successfully", record)
}

// UploadLogo handles POST /profile-share/upload-logo with a multipart "logo" file
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxLogoSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.fail(w, r, domain.Reject(domain.ErrFileTooLarge), "")
		case errors.Is(err, http.ErrNotMultipart):
			h.fail(w, r, domain.Reject(domain.ErrNoFile), "")
		default:
			utils.WriteError(w, http.StatusBadRequest, "Upload failed", err)
		}
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(logoFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.fail(w, r, domain.Reject(domain.ErrNoFile), "")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Upload failed", err)
		return
	}
	defer file.Close()

	result, err := h.service.UploadLogo(r.Context(), userID, domain.LogoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		h.fail(w, r, err, "Failed to upload logo")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Logo uploaded successfully", result)
}

// RemoveLogo handles DELETE /profile-share/remove-logo
func (h *Handler) RemoveLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	record, err := h.service.RemoveLogo(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err, "Failed to remove logo")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Logo removed successfully", record)
}

// SaveQR handles POST /profile-share/save-qr
func (h *Handler) SaveQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req saveQRRequest
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxQRSnapshot+jsonOverhead)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.service.SetQRSnapshot(r.Context(), userID, req.QRCodeImage)
	if err != nil {
		h.fail(w, r, err, "Failed to save QR code")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "QR code saved successfully", record)
}

// QRImage handles GET /profile-share/qr.png?size=N
func (h *Handler) QRImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.WriteError(w, http.StatusBadRequest, "size must be a positive integer", nil)
			return
		}
		size = n
	}

	png, err := h.service.RenderQR(r.Context(), userID, size)
	if err != nil {
		h.fail(w, r, err, "Failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return uuid.Nil, false
	}
	return userID, true
}

// fail writes client errors as 400 and everything else as 500 with message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		h.logger.InfoContext(r.Context(), "profile share request rejected",
			"method", r.Method, "path", r.URL.Path, "reason", err.Error())
		body := utils.Envelope{Success: false, Message: ve.Err.Error()}
		if ve.Reason != "" {
			body.Error = ve.Error()
		}
		utils.WriteJSON(w, http.StatusBadRequest, body)
		return
	}

	h.logger.ErrorContext(r.Context(), "profile share request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	utils.WriteError(w, http.StatusInternalServerError, message, err)
}
