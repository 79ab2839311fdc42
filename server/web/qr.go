package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/wego-social/wego-tools/internal/xio"
	"github.com/wego-social/wego-tools/server/wego"
)

// ActivityQR renders a share QR code pointing at the activity's public page.
func (h *handler) ActivityQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activityID := r.PathValue("activity_id")

	if _, err := h.Client.GetActivity(ctx, activityID); err != nil {
		if errors.Is(err, wego.ErrNotFound) {
			h.Error(w, r, http.StatusNotFound, "activity not found")
			return
		}
		h.ServerError(w, r, "failed to fetch activity", err)
		return
	}

	qr, err := qrcode.New(h.Cfg.Server.PublicURL + "/activities/" + activityID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create qrcode", slog.Any("err", err))
		h.Error(w, r, http.StatusInternalServerError, "failed to create qrcode")
		return
	}

	w.Header().Set("Content-Type", "image/png")

	qrW := standard.NewWithWriter(xio.NewResponseWriteCloser(w),
		standard.WithBgTransparent(),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	defer func() {
		_ = qrW.Close()
	}()
	if err = qr.Save(qrW); err != nil {
		slog.ErrorContext(ctx, "Failed to save qrcode", slog.Any("err", err))
	}
}
