package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// handleQR renders a PNG QR code pointing players at the game's join page.
func (s *Server) handleQR(c *gin.Context) {
	code := c.Param("code")
	snap, err := s.coord.State(c.Request.Context(), code, "")
	if err != nil {
		writeError(c, err)
		return
	}
	png, err := qrcode.Encode(joinURL(c.Request, snap.Game.Code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func joinURL(r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/join/" + code
}
