package helpers

import (
	"github.com/skip2/go-qrcode"
)

func EncodeQRPNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
