package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator encodes a link to the public order tracking page.
type DefaultQRGenerator struct {
	BaseURL string
	Size    int
}

func (g DefaultQRGenerator) Generate(orderID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	qrData := fmt.Sprintf("%s/order/%s", strings.TrimRight(g.BaseURL, "/"), url.PathEscape(orderID))
	return qrcode.Encode(qrData, qrcode.Medium, size)
}
